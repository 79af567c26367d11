package models

import "time"

// FrequencyEntry is one label/count pair of a frequency table, ordered by the
// producing aggregator.
type FrequencyEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CrossTabRow holds the per-column counts for one area.
type CrossTabRow struct {
	Area   string `json:"area"`
	Counts []int  `json:"counts"`
}

// CrossTab is a two-dimensional count matrix of incidents grouped by area
// (rows) and crime type (columns).
type CrossTab struct {
	Columns []string      `json:"columns"`
	Rows    []CrossTabRow `json:"rows"`
}

// HistogramBin is one equal-width bin of a numeric histogram. Lower is
// inclusive; Upper is exclusive except for the last bin.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// AgeHistogram holds binned victim age counts.
type AgeHistogram struct {
	SampleSize int            `json:"sample_size"`
	Bins       []HistogramBin `json:"bins"`
}

// GeoPoint is a single coordinate pair for the map layer.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TrendReport groups the temporal frequency tables derived from the
// occurrence date and time code.
type TrendReport struct {
	ByYear      []FrequencyEntry `json:"by_year"`
	ByDayOfWeek []FrequencyEntry `json:"by_day_of_week"`
	ByHour      []FrequencyEntry `json:"by_hour"`
}

// StageResult records the effect of a single cleaning stage.
type StageResult struct {
	Stage     string `json:"stage"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
}

// CleaningReport summarises one cleaning pipeline run. Stages are in
// execution order; DuplicatesRemoved and MissingCriticalRemoved repeat the two
// counts the dashboard surfaces directly.
type CleaningReport struct {
	RawCount               int           `json:"raw_count"`
	CleanCount             int           `json:"clean_count"`
	DuplicatesRemoved      int           `json:"duplicates_removed"`
	MissingCriticalRemoved int           `json:"missing_critical_removed"`
	Stages                 []StageResult `json:"stages"`
	Duration               time.Duration `json:"-"`
	DurationSeconds        float64       `json:"duration_seconds"`
}

// DashboardSnapshot is everything a rendering pass consumes: the cleaning
// report plus all aggregates, computed fresh from the cleaned records.
type DashboardSnapshot struct {
	LoadedAt      time.Time        `json:"loaded_at"`
	Report        *CleaningReport  `json:"report"`
	TopAreas      []FrequencyEntry `json:"top_areas"`
	TopCrimeTypes []FrequencyEntry `json:"top_crime_types"`
	StatusCounts  []FrequencyEntry `json:"status_counts"`
	TopWeapons    []FrequencyEntry `json:"top_weapons"`
	GeoSample     []GeoPoint       `json:"geo_sample"`
	CrimesByArea  *CrossTab        `json:"crimes_by_area"`
	VictimAges    *AgeHistogram    `json:"victim_ages"`
	VictimSexes   []FrequencyEntry `json:"victim_sexes"`
	Trends        *TrendReport     `json:"trends"`
}
