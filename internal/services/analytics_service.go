package services

import (
	"math/rand"
	"sort"
	"strconv"

	"github.com/oli3535/data-visualization-fianl/internal/models"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

const (
	// TopN bounds the truncated frequency tables
	TopN = 10
	// CrossTabCrimeTypes is how many globally most frequent crime types the
	// area crosstab keeps as columns
	CrossTabCrimeTypes = 5
	// GeoSampleSize caps the map sample
	GeoSampleSize = 5000
	// GeoSampleSeed fixes the sample for reproducibility
	GeoSampleSeed = 42
	// AgeHistogramBins is the number of equal-width victim age bins
	AgeHistogramBins = 30
)

// AnalyticsService computes the dashboard aggregates. Every method is a pure
// function of the cleaned collection: nothing is mutated, an empty input
// yields an empty result, and output order is deterministic.
type AnalyticsService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalyticsService {
	return &AnalyticsService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// TopAreas returns the ten areas with the most incidents.
func (s *AnalyticsService) TopAreas(incidents []*models.Incident) []models.FrequencyEntry {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("top_areas")).ObserveDuration()

	return truncateTop(frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.AreaName
	}), TopN)
}

// TopCrimeTypes returns the ten most common crime descriptions.
func (s *AnalyticsService) TopCrimeTypes(incidents []*models.Incident) []models.FrequencyEntry {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("top_crime_types")).ObserveDuration()

	return truncateTop(frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.CrimeDescription
	}), TopN)
}

// StatusDistribution returns the full case status frequency table.
func (s *AnalyticsService) StatusDistribution(incidents []*models.Incident) []models.FrequencyEntry {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("status_distribution")).ObserveDuration()

	return frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.CaseStatus
	})
}

// TopWeapons returns the ten most common weapon descriptions. Rows without a
// weapon are excluded rather than counted as a category.
func (s *AnalyticsService) TopWeapons(incidents []*models.Incident) []models.FrequencyEntry {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("top_weapons")).ObserveDuration()

	return truncateTop(frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.WeaponDescription
	}), TopN)
}

// VictimSexDistribution returns the full victim sex frequency table.
func (s *AnalyticsService) VictimSexDistribution(incidents []*models.Incident) []models.FrequencyEntry {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("victim_sex_distribution")).ObserveDuration()

	return frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.VictimSex
	})
}

// GeoSample draws min(5000, n) rows without replacement using a fixed seed, so
// the same cleaned collection always yields the same sample.
func (s *AnalyticsService) GeoSample(incidents []*models.Incident) []models.GeoPoint {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("geo_sample")).ObserveDuration()

	size := GeoSampleSize
	if len(incidents) < size {
		size = len(incidents)
	}

	rng := rand.New(rand.NewSource(GeoSampleSeed))
	indices := rng.Perm(len(incidents))[:size]

	points := make([]models.GeoPoint, 0, size)
	for _, idx := range indices {
		inc := incidents[idx]
		points = append(points, models.GeoPoint{
			Latitude:  *inc.Latitude,
			Longitude: *inc.Longitude,
		})
	}

	return points
}

// CrimeTypesByArea cross-tabulates incident counts by area (rows, sorted by
// label) and the five globally most frequent crime types (columns).
func (s *AnalyticsService) CrimeTypesByArea(incidents []*models.Incident) *models.CrossTab {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("crimes_by_area")).ObserveDuration()

	topCrimes := truncateTop(frequencyTable(incidents, func(inc *models.Incident) string {
		return inc.CrimeDescription
	}), CrossTabCrimeTypes)

	columns := make([]string, len(topCrimes))
	columnIndex := make(map[string]int, len(topCrimes))
	for i, entry := range topCrimes {
		columns[i] = entry.Label
		columnIndex[entry.Label] = i
	}

	// Every distinct area gets a row, even when all of its incidents fall
	// outside the top crime types and its counts stay zero.
	counts := make(map[string][]int)
	for _, inc := range incidents {
		if inc.AreaName == "" {
			continue
		}
		row, seen := counts[inc.AreaName]
		if !seen {
			row = make([]int, len(columns))
			counts[inc.AreaName] = row
		}

		col, ok := columnIndex[inc.CrimeDescription]
		if !ok {
			continue
		}
		row[col]++
	}

	areas := make([]string, 0, len(counts))
	for area := range counts {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	rows := make([]models.CrossTabRow, 0, len(areas))
	for _, area := range areas {
		rows = append(rows, models.CrossTabRow{Area: area, Counts: counts[area]})
	}

	return &models.CrossTab{Columns: columns, Rows: rows}
}

// VictimAgeHistogram bins victim ages strictly between 0 and 100 into thirty
// equal-width bins spanning the filtered sample. Age filtering is local to
// this aggregate; out-of-range ages stay in the cleaned collection.
func (s *AnalyticsService) VictimAgeHistogram(incidents []*models.Incident) *models.AgeHistogram {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("victim_age_histogram")).ObserveDuration()

	var ages []float64
	for _, inc := range incidents {
		if inc.VictimAge == nil {
			continue
		}
		age := float64(*inc.VictimAge)
		if age > 0 && age < 100 {
			ages = append(ages, age)
		}
	}

	histogram := &models.AgeHistogram{
		SampleSize: len(ages),
		Bins:       []models.HistogramBin{},
	}
	if len(ages) == 0 {
		return histogram
	}

	minAge, maxAge := ages[0], ages[0]
	for _, age := range ages[1:] {
		if age < minAge {
			minAge = age
		}
		if age > maxAge {
			maxAge = age
		}
	}
	// Degenerate sample: give the single value a unit-wide range
	if minAge == maxAge {
		minAge -= 0.5
		maxAge += 0.5
	}

	width := (maxAge - minAge) / AgeHistogramBins
	bins := make([]models.HistogramBin, AgeHistogramBins)
	for i := range bins {
		bins[i].Lower = minAge + float64(i)*width
		bins[i].Upper = minAge + float64(i+1)*width
	}

	for _, age := range ages {
		idx := int((age - minAge) / width)
		// The sample maximum belongs to the last bin
		if idx >= AgeHistogramBins {
			idx = AgeHistogramBins - 1
		}
		bins[idx].Count++
	}

	histogram.Bins = bins
	return histogram
}

// Trends returns the temporal frequency tables: incidents by year (ascending),
// by day of week (calendar order), and by hour of day (ascending). Rows with a
// missing hour are skipped by the hour table only; out-of-range hours are
// reported as-is.
func (s *AnalyticsService) Trends(incidents []*models.Incident) *models.TrendReport {
	defer s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues("trends")).ObserveDuration()

	yearCounts := make(map[int]int)
	dayCounts := make(map[string]int)
	hourCounts := make(map[int]int)

	for _, inc := range incidents {
		yearCounts[inc.Year]++
		dayCounts[inc.DayOfWeek]++
		if inc.Hour != nil {
			hourCounts[*inc.Hour]++
		}
	}

	report := &models.TrendReport{
		ByYear:      []models.FrequencyEntry{},
		ByDayOfWeek: []models.FrequencyEntry{},
		ByHour:      []models.FrequencyEntry{},
	}

	years := sortedIntKeys(yearCounts)
	for _, year := range years {
		report.ByYear = append(report.ByYear, models.FrequencyEntry{
			Label: strconv.Itoa(year),
			Count: yearCounts[year],
		})
	}

	weekdays := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for _, day := range weekdays {
		if count, ok := dayCounts[day]; ok {
			report.ByDayOfWeek = append(report.ByDayOfWeek, models.FrequencyEntry{
				Label: day,
				Count: count,
			})
		}
	}

	hours := sortedIntKeys(hourCounts)
	for _, hour := range hours {
		report.ByHour = append(report.ByHour, models.FrequencyEntry{
			Label: strconv.Itoa(hour),
			Count: hourCounts[hour],
		})
	}

	return report
}

// frequencyTable counts non-empty labels and returns them sorted by count
// descending. The sort is stable over first-encountered order, which is the
// tie-break rule for every truncated table.
func frequencyTable(incidents []*models.Incident, label func(*models.Incident) string) []models.FrequencyEntry {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, inc := range incidents {
		l := label(inc)
		if l == "" {
			continue
		}
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}

	entries := make([]models.FrequencyEntry, 0, len(order))
	for _, l := range order {
		entries = append(entries, models.FrequencyEntry{Label: l, Count: counts[l]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

func truncateTop(entries []models.FrequencyEntry, n int) []models.FrequencyEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func sortedIntKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
