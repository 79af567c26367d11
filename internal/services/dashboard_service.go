package services

import (
	"context"
	"sync"
	"time"

	"github.com/oli3535/data-visualization-fianl/internal/dataset"
	"github.com/oli3535/data-visualization-fianl/internal/models"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

// DashboardService orchestrates a render pass: load (through the dataset
// cache), clean once per load, and compute aggregates fresh on every request.
type DashboardService struct {
	loader      *dataset.Loader
	cleaner     *CleaningService
	analytics   *AnalyticsService
	datasetPath string
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector

	// The cleaned collection is derived once per cache generation and is
	// immutable afterwards; the mutex only guards the generation swap.
	mu         sync.Mutex
	generation *cleanedGeneration
}

type cleanedGeneration struct {
	loadedAt  time.Time
	incidents []*models.Incident
	report    *models.CleaningReport
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	loader *dataset.Loader,
	cleaner *CleaningService,
	analytics *AnalyticsService,
	datasetPath string,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardService {
	return &DashboardService{
		loader:      loader,
		cleaner:     cleaner,
		analytics:   analytics,
		datasetPath: datasetPath,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// cleaned returns the current cleaned generation, re-running the cleaning
// pipeline only when the loader produced a newer dataset.
func (s *DashboardService) cleaned(ctx context.Context) (*cleanedGeneration, error) {
	raws, loadedAt, err := s.loader.Load(ctx, s.datasetPath)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation == nil || !s.generation.loadedAt.Equal(loadedAt) {
		incidents, report := s.cleaner.Clean(ctx, raws)
		s.generation = &cleanedGeneration{
			loadedAt:  loadedAt,
			incidents: incidents,
			report:    report,
		}
	}

	return s.generation, nil
}

// Snapshot computes the full dashboard: the cleaning report plus every
// aggregate, recomputed from the cleaned collection.
func (s *DashboardService) Snapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.SnapshotsTotal.Inc()

	return &models.DashboardSnapshot{
		LoadedAt:      gen.loadedAt,
		Report:        gen.report,
		TopAreas:      s.analytics.TopAreas(gen.incidents),
		TopCrimeTypes: s.analytics.TopCrimeTypes(gen.incidents),
		StatusCounts:  s.analytics.StatusDistribution(gen.incidents),
		TopWeapons:    s.analytics.TopWeapons(gen.incidents),
		GeoSample:     s.analytics.GeoSample(gen.incidents),
		CrimesByArea:  s.analytics.CrimeTypesByArea(gen.incidents),
		VictimAges:    s.analytics.VictimAgeHistogram(gen.incidents),
		VictimSexes:   s.analytics.VictimSexDistribution(gen.incidents),
		Trends:        s.analytics.Trends(gen.incidents),
	}, nil
}

// Summary returns the cleaning report for the current generation.
func (s *DashboardService) Summary(ctx context.Context) (*models.CleaningReport, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return gen.report, nil
}

// TopAreas returns the top areas table for the current generation.
func (s *DashboardService) TopAreas(ctx context.Context) ([]models.FrequencyEntry, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.TopAreas(gen.incidents), nil
}

// TopCrimeTypes returns the top crime types table for the current generation.
func (s *DashboardService) TopCrimeTypes(ctx context.Context) ([]models.FrequencyEntry, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.TopCrimeTypes(gen.incidents), nil
}

// StatusDistribution returns the case status table for the current generation.
func (s *DashboardService) StatusDistribution(ctx context.Context) ([]models.FrequencyEntry, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.StatusDistribution(gen.incidents), nil
}

// TopWeapons returns the top weapons table for the current generation.
func (s *DashboardService) TopWeapons(ctx context.Context) ([]models.FrequencyEntry, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.TopWeapons(gen.incidents), nil
}

// GeoSample returns the map sample for the current generation.
func (s *DashboardService) GeoSample(ctx context.Context) ([]models.GeoPoint, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.GeoSample(gen.incidents), nil
}

// CrimeTypesByArea returns the crosstab for the current generation.
func (s *DashboardService) CrimeTypesByArea(ctx context.Context) (*models.CrossTab, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.CrimeTypesByArea(gen.incidents), nil
}

// VictimAgeHistogram returns the age histogram for the current generation.
func (s *DashboardService) VictimAgeHistogram(ctx context.Context) (*models.AgeHistogram, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.VictimAgeHistogram(gen.incidents), nil
}

// VictimSexDistribution returns the victim sex table for the current generation.
func (s *DashboardService) VictimSexDistribution(ctx context.Context) ([]models.FrequencyEntry, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.VictimSexDistribution(gen.incidents), nil
}

// Trends returns the temporal tables for the current generation.
func (s *DashboardService) Trends(ctx context.Context) (*models.TrendReport, error) {
	gen, err := s.cleaned(ctx)
	if err != nil {
		return nil, err
	}
	return s.analytics.Trends(gen.incidents), nil
}
