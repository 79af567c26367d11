package services

import (
	"context"
	"time"

	"github.com/oli3535/data-visualization-fianl/internal/models"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

// Geographic validity bounds for the studied region. Coordinates outside this
// box are treated as bad geocoding, not valid rare locations.
const (
	MinLatitude  = 33.0
	MaxLatitude  = 35.0
	MinLongitude = -119.0
	MaxLongitude = -117.0
)

// Stage names, in execution order. The order is part of the contract: later
// stages operate on fields derived by earlier ones, and reported removal
// counts are deltas between consecutive stage sizes.
const (
	StageParseDate              = "parse_date"
	StageDeriveTemporal         = "derive_temporal"
	StageCoerceTime             = "coerce_time"
	StageDeriveHour             = "derive_hour"
	StageDropMissingCoordinates = "drop_missing_coordinates"
	StageDropZeroCoordinates    = "drop_zero_coordinates"
	StageDropOutsideBounds      = "drop_outside_bounds"
	StageDropDuplicates         = "drop_duplicates"
	StageDropMissingCritical    = "drop_missing_critical"
)

// CleaningService transforms raw incident rows into the cleaned collection all
// aggregates consume, tracking how many rows each stage removed. Row-level
// failures are absorbed, never returned as errors.
type CleaningService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCleaningService creates a new cleaning service
func NewCleaningService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CleaningService {
	return &CleaningService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// pipelineStage is one named filter or derive step. Derive steps return a
// removed count of zero.
type pipelineStage struct {
	name  string
	apply func([]*models.Incident) ([]*models.Incident, int)
}

// stages returns the fixed pipeline applied after date parsing.
func (s *CleaningService) stages() []pipelineStage {
	return []pipelineStage{
		{StageDeriveTemporal, deriveTemporal},
		{StageCoerceTime, coerceTime},
		{StageDeriveHour, deriveHour},
		{StageDropMissingCoordinates, dropMissingCoordinates},
		{StageDropZeroCoordinates, dropZeroCoordinates},
		{StageDropOutsideBounds, dropOutsideBounds},
		{StageDropDuplicates, dropDuplicates},
		{StageDropMissingCritical, dropMissingCritical},
	}
}

// Clean runs the full pipeline over the raw collection. The result is
// deterministic: the same input always yields the same cleaned collection and
// the same per-stage counts.
func (s *CleaningService) Clean(ctx context.Context, raws []models.RawIncident) ([]*models.Incident, *models.CleaningReport) {
	startTime := time.Now()

	report := &models.CleaningReport{
		RawCount: len(raws),
		Stages:   make([]models.StageResult, 0, 9),
	}

	incidents, removed := parseDates(raws)
	s.recordStage(ctx, report, StageParseDate, removed, len(incidents))

	for _, stage := range s.stages() {
		incidents, removed = stage.apply(incidents)
		s.recordStage(ctx, report, stage.name, removed, len(incidents))

		switch stage.name {
		case StageDropDuplicates:
			report.DuplicatesRemoved = removed
		case StageDropMissingCritical:
			report.MissingCriticalRemoved = removed
		}
	}

	report.CleanCount = len(incidents)
	report.Duration = time.Since(startTime)
	report.DurationSeconds = report.Duration.Seconds()

	s.metrics.CleaningDuration.Observe(report.Duration.Seconds())
	s.metrics.RowsRetained.Set(float64(len(incidents)))

	s.logger.Info(ctx, "[CLEAN_COMPLETE] Cleaning pipeline finished", logging.Fields{
		"raw_rows":                 report.RawCount,
		"clean_rows":               report.CleanCount,
		"duplicates_removed":       report.DuplicatesRemoved,
		"missing_critical_removed": report.MissingCriticalRemoved,
		"duration_ms":              report.Duration.Milliseconds(),
	})

	return incidents, report
}

// recordStage appends a stage result to the report and records its removals.
func (s *CleaningService) recordStage(ctx context.Context, report *models.CleaningReport, name string, removed, remaining int) {
	report.Stages = append(report.Stages, models.StageResult{
		Stage:     name,
		Removed:   removed,
		Remaining: remaining,
	})

	s.metrics.RecordStageRemovals(name, removed)

	s.logger.Debug(ctx, "[CLEAN_STAGE] Cleaning stage applied", logging.Fields{
		"stage":     name,
		"removed":   removed,
		"remaining": remaining,
	})
}

// parseDates converts raw rows to typed incidents, dropping rows whose
// occurrence date does not parse.
func parseDates(raws []models.RawIncident) ([]*models.Incident, int) {
	incidents := make([]*models.Incident, 0, len(raws))
	removed := 0

	for i := range raws {
		inc, err := raws[i].ToIncident()
		if err != nil {
			removed++
			continue
		}
		incidents = append(incidents, inc)
	}

	return incidents, removed
}

func deriveTemporal(incidents []*models.Incident) ([]*models.Incident, int) {
	for _, inc := range incidents {
		inc.DeriveTemporal()
	}
	return incidents, 0
}

// coerceTime coerces the time code without dropping rows: a non-numeric value
// only makes the hour unusable downstream.
func coerceTime(incidents []*models.Incident) ([]*models.Incident, int) {
	for _, inc := range incidents {
		inc.CoerceTimeCode()
	}
	return incidents, 0
}

func deriveHour(incidents []*models.Incident) ([]*models.Incident, int) {
	for _, inc := range incidents {
		inc.DeriveHour()
	}
	return incidents, 0
}

func dropMissingCoordinates(incidents []*models.Incident) ([]*models.Incident, int) {
	return filterIncidents(incidents, func(inc *models.Incident) bool {
		return inc.Latitude != nil && inc.Longitude != nil
	})
}

func dropZeroCoordinates(incidents []*models.Incident) ([]*models.Incident, int) {
	return filterIncidents(incidents, func(inc *models.Incident) bool {
		return *inc.Latitude != 0 && *inc.Longitude != 0
	})
}

func dropOutsideBounds(incidents []*models.Incident) ([]*models.Incident, int) {
	return filterIncidents(incidents, func(inc *models.Incident) bool {
		return *inc.Latitude >= MinLatitude && *inc.Latitude <= MaxLatitude &&
			*inc.Longitude >= MinLongitude && *inc.Longitude <= MaxLongitude
	})
}

// dropDuplicates keeps the first occurrence of each fully identical row,
// loaded and derived columns included.
func dropDuplicates(incidents []*models.Incident) ([]*models.Incident, int) {
	seen := make(map[string]struct{}, len(incidents))

	return filterIncidents(incidents, func(inc *models.Incident) bool {
		key := inc.DuplicateKey()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

func dropMissingCritical(incidents []*models.Incident) ([]*models.Incident, int) {
	return filterIncidents(incidents, (*models.Incident).HasCriticalFields)
}

// filterIncidents keeps rows for which keep returns true, preserving order,
// and reports how many were removed.
func filterIncidents(incidents []*models.Incident, keep func(*models.Incident) bool) ([]*models.Incident, int) {
	kept := make([]*models.Incident, 0, len(incidents))

	for _, inc := range incidents {
		if keep(inc) {
			kept = append(kept, inc)
		}
	}

	return kept, len(incidents) - len(kept)
}
