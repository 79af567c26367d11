package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the crime dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	frequencyTable := map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"label": map[string]string{"type": "string"},
				"count": map[string]string{"type": "integer"},
			},
		},
	}

	aggregateGet := func(summary, description string, schema map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     summary,
				"description": description,
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Successful response",
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": schema,
							},
						},
					},
					"503": map[string]interface{}{
						"description": "Dataset unavailable: the source file is absent, unreadable, or missing required columns",
					},
				},
			},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "LA Crime Dashboard API",
			"description": "Descriptive aggregates over the Los Angeles crime incident dataset (2020 to present), served to a rendering frontend",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard/summary": aggregateGet(
				"Get cleaning summary",
				"Raw/clean row counts and per-stage removal counts for the current dataset generation",
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"raw_count":                map[string]string{"type": "integer"},
						"clean_count":              map[string]string{"type": "integer"},
						"duplicates_removed":       map[string]string{"type": "integer"},
						"missing_critical_removed": map[string]string{"type": "integer"},
						"stages": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"stage":     map[string]string{"type": "string"},
									"removed":   map[string]string{"type": "integer"},
									"remaining": map[string]string{"type": "integer"},
								},
							},
						},
					},
				},
			),
			"/api/dashboard/areas": aggregateGet(
				"Get top crime areas",
				"The ten police areas with the most incidents, ordered by count descending",
				frequencyTable,
			),
			"/api/dashboard/crime-types": aggregateGet(
				"Get top crime types",
				"The ten most common crime descriptions, ordered by count descending",
				frequencyTable,
			),
			"/api/dashboard/status": aggregateGet(
				"Get case status distribution",
				"Full case status frequency table",
				frequencyTable,
			),
			"/api/dashboard/weapons": aggregateGet(
				"Get top weapons",
				"The ten most common weapon descriptions; incidents without a weapon are excluded",
				frequencyTable,
			),
			"/api/dashboard/geo": aggregateGet(
				"Get map sample",
				"Deterministic sample of up to 5000 incident coordinates for the heat map layer",
				map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"latitude":  map[string]string{"type": "number"},
							"longitude": map[string]string{"type": "number"},
						},
					},
				},
			),
			"/api/dashboard/crosstab": aggregateGet(
				"Get crime types by area",
				"Count matrix of the five most frequent crime types (columns) across all police areas (rows)",
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"columns": map[string]interface{}{
							"type":  "array",
							"items": map[string]string{"type": "string"},
						},
						"rows": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"area": map[string]string{"type": "string"},
									"counts": map[string]interface{}{
										"type":  "array",
										"items": map[string]string{"type": "integer"},
									},
								},
							},
						},
					},
				},
			),
			"/api/dashboard/victim-age": aggregateGet(
				"Get victim age histogram",
				"Thirty equal-width bins over victim ages strictly between 0 and 100",
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"sample_size": map[string]string{"type": "integer"},
						"bins": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"lower": map[string]string{"type": "number"},
									"upper": map[string]string{"type": "number"},
									"count": map[string]string{"type": "integer"},
								},
							},
						},
					},
				},
			),
			"/api/dashboard/victim-sex": aggregateGet(
				"Get victim sex distribution",
				"Full victim sex frequency table",
				frequencyTable,
			),
			"/api/dashboard/trends": aggregateGet(
				"Get temporal trends",
				"Incident counts by year, day of week, and hour of day",
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"by_year":        frequencyTable,
						"by_day_of_week": frequencyTable,
						"by_hour":        frequencyTable,
					},
				},
			),
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Service is healthy",
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
