package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/oli3535/data-visualization-fianl/internal/config"
	"github.com/oli3535/data-visualization-fianl/internal/dataset"
	"github.com/oli3535/data-visualization-fianl/internal/models"
	"github.com/oli3535/data-visualization-fianl/internal/services"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

func main() {
	// Parse command-line flags
	datasetPath := flag.String("dataset", "", "Dataset file path (overrides DATASET_PATH)")
	topRows := flag.Int("top-rows", 10, "How many rows of each frequency table to print")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("crime-analyzer", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[ANALYZE_START] Starting one-shot pipeline run", logging.Fields{
		"version":      "1.0.0",
		"dataset_path": cfg.Dataset.Path,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("crime_analyzer")

	// Wire the pipeline
	cache := dataset.NewCache(cfg.Cache.TTL)
	loader := dataset.NewLoader(cache, logger, metricsCollector)
	cleaningService := services.NewCleaningService(logger, metricsCollector)
	analyticsService := services.NewAnalyticsService(logger, metricsCollector)
	dashboardService := services.NewDashboardService(
		loader,
		cleaningService,
		analyticsService,
		cfg.Dataset.Path,
		logger,
		metricsCollector,
	)

	snapshot, err := dashboardService.Snapshot(ctx)
	if err != nil {
		logger.Fatal(ctx, "[ANALYZE_ERROR] Pipeline run failed", logging.Fields{
			"dataset_path": cfg.Dataset.Path,
		}, err)
	}

	printReport(snapshot.Report)

	printFrequencyTable("TOP CRIME AREAS", snapshot.TopAreas, *topRows)
	printFrequencyTable("TOP CRIME TYPES", snapshot.TopCrimeTypes, *topRows)
	printFrequencyTable("CASE STATUS", snapshot.StatusCounts, *topRows)
	printFrequencyTable("TOP WEAPONS", snapshot.TopWeapons, *topRows)
	printFrequencyTable("VICTIM SEX", snapshot.VictimSexes, *topRows)
	printFrequencyTable("INCIDENTS BY YEAR", snapshot.Trends.ByYear, *topRows)
	printFrequencyTable("INCIDENTS BY DAY OF WEEK", snapshot.Trends.ByDayOfWeek, *topRows)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Geo sample:            %d points (seed %d)\n", len(snapshot.GeoSample), services.GeoSampleSeed)
	fmt.Printf("Age histogram sample:  %d victims in %d bins\n", snapshot.VictimAges.SampleSize, len(snapshot.VictimAges.Bins))
	fmt.Printf("Crosstab:              %d areas x %d crime types\n", len(snapshot.CrimesByArea.Rows), len(snapshot.CrimesByArea.Columns))

	logger.Info(ctx, "[ANALYZE_COMPLETE] Pipeline run completed", logging.Fields{
		"raw_rows":   snapshot.Report.RawCount,
		"clean_rows": snapshot.Report.CleanCount,
	})
}

func printReport(report *models.CleaningReport) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("CLEANING REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Raw rows:           %d\n", report.RawCount)
	fmt.Printf("Clean rows:         %d\n", report.CleanCount)
	fmt.Printf("Duplicates removed: %d\n", report.DuplicatesRemoved)
	fmt.Printf("Missing critical:   %d\n", report.MissingCriticalRemoved)
	fmt.Printf("Duration:           %v\n", report.Duration)
	fmt.Println()
	fmt.Println("Per-stage removals:")
	for _, stage := range report.Stages {
		fmt.Printf("  %-26s removed %8d, remaining %8d\n", stage.Stage, stage.Removed, stage.Remaining)
	}
}

func printFrequencyTable(title string, entries []models.FrequencyEntry, limit int) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 80))

	if len(entries) == 0 {
		fmt.Println("  (no data)")
		return
	}

	for i, entry := range entries {
		if i >= limit {
			fmt.Printf("  ... and %d more\n", len(entries)-limit)
			break
		}
		fmt.Printf("  %-50s %8d\n", entry.Label, entry.Count)
	}
}
