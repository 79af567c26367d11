package services

import (
	"math"
	"testing"

	"github.com/oli3535/data-visualization-fianl/internal/models"
)

func intPtr(v int) *int {
	return &v
}

// makeIncident builds a cleaned-shape incident for aggregate tests.
func makeIncident(area, crime, status, sex, weapon string, age *int, lat, lon float64, hour *int) *models.Incident {
	return &models.Incident{
		AreaName:          area,
		CrimeDescription:  crime,
		CaseStatus:        status,
		VictimSex:         sex,
		WeaponDescription: weapon,
		VictimAge:         age,
		Latitude:          &lat,
		Longitude:         &lon,
		Hour:              hour,
	}
}

func withArea(area string) *models.Incident {
	return makeIncident(area, "BURGLARY", "Invest Cont", "M", "", nil, 34.05, -118.25, nil)
}

// TestAnalyticsService_TopAreas verifies count-descending order with
// first-encountered tie-breaks and the ten-entry cap
func TestAnalyticsService_TopAreas(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	t.Run("ties keep first-encountered order", func(t *testing.T) {
		incidents := []*models.Incident{
			withArea("Hollywood"),
			withArea("Central"),
			withArea("Central"),
			withArea("Newton"),
			withArea("Hollywood"),
			withArea("Newton"),
			withArea("Newton"),
		}

		got := service.TopAreas(incidents)

		want := []models.FrequencyEntry{
			{Label: "Newton", Count: 3},
			{Label: "Hollywood", Count: 2},
			{Label: "Central", Count: 2},
		}
		if len(got) != len(want) {
			t.Fatalf("len = %v, want %v", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("table is capped at ten entries", func(t *testing.T) {
		areas := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
		incidents := make([]*models.Incident, 0, len(areas)+1)
		for _, area := range areas {
			incidents = append(incidents, withArea(area))
		}
		incidents = append(incidents, withArea("K"))

		got := service.TopAreas(incidents)

		if len(got) != TopN {
			t.Fatalf("len = %v, want %v", len(got), TopN)
		}
		if got[0].Label != "K" || got[0].Count != 2 {
			t.Errorf("entry 0 = %+v, want {K 2}", got[0])
		}
	})

	t.Run("empty labels are excluded", func(t *testing.T) {
		incidents := []*models.Incident{withArea(""), withArea("Central")}

		got := service.TopAreas(incidents)

		if len(got) != 1 || got[0].Label != "Central" {
			t.Errorf("got %+v, want only Central", got)
		}
	})
}

// TestAnalyticsService_TopWeapons verifies rows without a weapon are excluded
// rather than counted as a category
func TestAnalyticsService_TopWeapons(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	incidents := []*models.Incident{
		makeIncident("Central", "ROBBERY", "Invest Cont", "M", "HAND GUN", nil, 34.05, -118.25, nil),
		makeIncident("Central", "ROBBERY", "Invest Cont", "M", "", nil, 34.05, -118.25, nil),
		makeIncident("Central", "ROBBERY", "Invest Cont", "M", "HAND GUN", nil, 34.05, -118.25, nil),
	}

	got := service.TopWeapons(incidents)

	if len(got) != 1 {
		t.Fatalf("len = %v, want 1", len(got))
	}
	if got[0].Label != "HAND GUN" || got[0].Count != 2 {
		t.Errorf("entry 0 = %+v, want {HAND GUN 2}", got[0])
	}
}

// TestAnalyticsService_GeoSample verifies the fixed-seed sample is
// reproducible and drawn from the input without replacement
func TestAnalyticsService_GeoSample(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	incidents := make([]*models.Incident, 0, 20)
	coords := make(map[models.GeoPoint]struct{}, 20)
	for i := 0; i < 20; i++ {
		lat := 33.5 + float64(i)*0.01
		lon := -118.5 + float64(i)*0.01
		incidents = append(incidents, makeIncident("Central", "ROBBERY", "Invest Cont", "M", "", nil, lat, lon, nil))
		coords[models.GeoPoint{Latitude: lat, Longitude: lon}] = struct{}{}
	}

	first := service.GeoSample(incidents)
	second := service.GeoSample(incidents)

	if len(first) != len(incidents) {
		t.Fatalf("len = %v, want %v (sample of a small collection is the whole collection)", len(first), len(incidents))
	}
	if len(first) != len(second) {
		t.Fatalf("sample sizes differ between runs: %v vs %v", len(first), len(second))
	}

	seen := make(map[models.GeoPoint]struct{}, len(first))
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
		if _, ok := coords[first[i]]; !ok {
			t.Errorf("point %d not drawn from the input: %+v", i, first[i])
		}
		if _, dup := seen[first[i]]; dup {
			t.Errorf("point %d drawn twice: %+v", i, first[i])
		}
		seen[first[i]] = struct{}{}
	}
}

// TestAnalyticsService_CrimeTypesByArea verifies column restriction to the
// five most frequent crime types and sorted area rows
func TestAnalyticsService_CrimeTypesByArea(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	crime := func(area, desc string) *models.Incident {
		return makeIncident(area, desc, "Invest Cont", "M", "", nil, 34.05, -118.25, nil)
	}

	// Six crime types; "ARSON" is the rarest and must be excluded.
	incidents := []*models.Incident{
		crime("Newton", "BURGLARY"), crime("Newton", "BURGLARY"), crime("Newton", "BURGLARY"),
		crime("Newton", "BURGLARY"), crime("Newton", "BURGLARY"), crime("Newton", "BURGLARY"),
		crime("Central", "ROBBERY"), crime("Central", "ROBBERY"), crime("Central", "ROBBERY"),
		crime("Central", "ROBBERY"), crime("Central", "ROBBERY"),
		crime("Central", "ASSAULT"), crime("Central", "ASSAULT"), crime("Central", "ASSAULT"),
		crime("Central", "ASSAULT"),
		crime("Newton", "THEFT"), crime("Newton", "THEFT"), crime("Newton", "THEFT"),
		crime("Central", "VANDALISM"), crime("Central", "VANDALISM"),
		crime("Hollywood", "ARSON"),
	}

	got := service.CrimeTypesByArea(incidents)

	wantColumns := []string{"BURGLARY", "ROBBERY", "ASSAULT", "THEFT", "VANDALISM"}
	if len(got.Columns) != len(wantColumns) {
		t.Fatalf("len(Columns) = %v, want %v", len(got.Columns), len(wantColumns))
	}
	for i := range wantColumns {
		if got.Columns[i] != wantColumns[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, got.Columns[i], wantColumns[i])
		}
	}

	// Hollywood only has the excluded type, but every area still gets a row.
	if len(got.Rows) != 3 {
		t.Fatalf("len(Rows) = %v, want 3", len(got.Rows))
	}
	if got.Rows[0].Area != "Central" || got.Rows[1].Area != "Hollywood" || got.Rows[2].Area != "Newton" {
		t.Errorf("row areas = %q, %q, %q; want Central, Hollywood, Newton",
			got.Rows[0].Area, got.Rows[1].Area, got.Rows[2].Area)
	}

	wantCentral := []int{0, 5, 4, 0, 2}
	wantHollywood := []int{0, 0, 0, 0, 0}
	wantNewton := []int{6, 0, 0, 3, 0}
	for i := range wantCentral {
		if got.Rows[0].Counts[i] != wantCentral[i] {
			t.Errorf("Central counts[%d] = %v, want %v", i, got.Rows[0].Counts[i], wantCentral[i])
		}
		if got.Rows[1].Counts[i] != wantHollywood[i] {
			t.Errorf("Hollywood counts[%d] = %v, want %v", i, got.Rows[1].Counts[i], wantHollywood[i])
		}
		if got.Rows[2].Counts[i] != wantNewton[i] {
			t.Errorf("Newton counts[%d] = %v, want %v", i, got.Rows[2].Counts[i], wantNewton[i])
		}
	}
}

// TestAnalyticsService_CrimeTypesByArea_RareTypesOnly verifies an area whose
// incidents all fall outside the top crime types still appears as a zero row
func TestAnalyticsService_CrimeTypesByArea_RareTypesOnly(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	crime := func(area, desc string) *models.Incident {
		return makeIncident(area, desc, "Invest Cont", "M", "", nil, 34.05, -118.25, nil)
	}

	incidents := []*models.Incident{
		crime("Central", "BURGLARY"), crime("Central", "ROBBERY"), crime("Central", "ASSAULT"),
		crime("Central", "THEFT"), crime("Central", "VANDALISM"),
		crime("Central", "BURGLARY"), crime("Central", "ROBBERY"), crime("Central", "ASSAULT"),
		crime("Central", "THEFT"), crime("Central", "VANDALISM"),
		crime("Hollywood", "ARSON"),
	}

	got := service.CrimeTypesByArea(incidents)

	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %v, want 2", len(got.Rows))
	}
	if got.Rows[1].Area != "Hollywood" {
		t.Fatalf("Rows[1].Area = %q, want Hollywood", got.Rows[1].Area)
	}
	for i, count := range got.Rows[1].Counts {
		if count != 0 {
			t.Errorf("Hollywood counts[%d] = %v, want 0", i, count)
		}
	}
}

// TestAnalyticsService_VictimAgeHistogram verifies the local age filter and
// the bin arithmetic
func TestAnalyticsService_VictimAgeHistogram(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	age := func(v int) *models.Incident {
		return makeIncident("Central", "ROBBERY", "Invest Cont", "M", "", &v, 34.05, -118.25, nil)
	}

	t.Run("out-of-range ages are excluded locally", func(t *testing.T) {
		incidents := []*models.Incident{
			age(10), age(20), age(30),
			age(0), age(100), age(150), age(-2),
			makeIncident("Central", "ROBBERY", "Invest Cont", "M", "", nil, 34.05, -118.25, nil),
		}

		got := service.VictimAgeHistogram(incidents)

		if got.SampleSize != 3 {
			t.Fatalf("SampleSize = %v, want 3", got.SampleSize)
		}
		if len(got.Bins) != AgeHistogramBins {
			t.Fatalf("len(Bins) = %v, want %v", len(got.Bins), AgeHistogramBins)
		}

		total := 0
		for _, bin := range got.Bins {
			total += bin.Count
		}
		if total != got.SampleSize {
			t.Errorf("bin counts sum to %v, want %v", total, got.SampleSize)
		}

		if got.Bins[0].Lower != 10 {
			t.Errorf("Bins[0].Lower = %v, want 10", got.Bins[0].Lower)
		}
		last := got.Bins[AgeHistogramBins-1]
		if math.Abs(last.Upper-30) > 1e-9 {
			t.Errorf("last bin Upper = %v, want 30", last.Upper)
		}
	})

	t.Run("single distinct age gets a unit-wide range", func(t *testing.T) {
		got := service.VictimAgeHistogram([]*models.Incident{age(40), age(40)})

		if got.SampleSize != 2 {
			t.Fatalf("SampleSize = %v, want 2", got.SampleSize)
		}
		if got.Bins[0].Lower != 39.5 {
			t.Errorf("Bins[0].Lower = %v, want 39.5", got.Bins[0].Lower)
		}
		total := 0
		for _, bin := range got.Bins {
			total += bin.Count
		}
		if total != 2 {
			t.Errorf("bin counts sum to %v, want 2", total)
		}
	})

	t.Run("no usable ages yields an empty histogram", func(t *testing.T) {
		got := service.VictimAgeHistogram([]*models.Incident{age(0), age(150)})

		if got.SampleSize != 0 {
			t.Errorf("SampleSize = %v, want 0", got.SampleSize)
		}
		if len(got.Bins) != 0 {
			t.Errorf("len(Bins) = %v, want 0", len(got.Bins))
		}
	})
}

// TestAnalyticsService_Trends verifies temporal table ordering and the
// handling of missing and out-of-range hours
func TestAnalyticsService_Trends(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	at := func(year int, day string, hour *int) *models.Incident {
		inc := withArea("Central")
		inc.Year = year
		inc.DayOfWeek = day
		inc.Hour = hour
		return inc
	}

	incidents := []*models.Incident{
		at(2023, "Sunday", intPtr(25)),
		at(2021, "Monday", intPtr(3)),
		at(2023, "Monday", nil),
		at(2022, "Friday", intPtr(3)),
	}

	got := service.Trends(incidents)

	wantYears := []models.FrequencyEntry{{Label: "2021", Count: 1}, {Label: "2022", Count: 1}, {Label: "2023", Count: 2}}
	if len(got.ByYear) != len(wantYears) {
		t.Fatalf("len(ByYear) = %v, want %v", len(got.ByYear), len(wantYears))
	}
	for i := range wantYears {
		if got.ByYear[i] != wantYears[i] {
			t.Errorf("ByYear[%d] = %+v, want %+v", i, got.ByYear[i], wantYears[i])
		}
	}

	wantDays := []models.FrequencyEntry{{Label: "Monday", Count: 2}, {Label: "Friday", Count: 1}, {Label: "Sunday", Count: 1}}
	if len(got.ByDayOfWeek) != len(wantDays) {
		t.Fatalf("len(ByDayOfWeek) = %v, want %v", len(got.ByDayOfWeek), len(wantDays))
	}
	for i := range wantDays {
		if got.ByDayOfWeek[i] != wantDays[i] {
			t.Errorf("ByDayOfWeek[%d] = %+v, want %+v", i, got.ByDayOfWeek[i], wantDays[i])
		}
	}

	// The row with a nil hour is skipped; hour 25 is reported as-is.
	wantHours := []models.FrequencyEntry{{Label: "3", Count: 2}, {Label: "25", Count: 1}}
	if len(got.ByHour) != len(wantHours) {
		t.Fatalf("len(ByHour) = %v, want %v", len(got.ByHour), len(wantHours))
	}
	for i := range wantHours {
		if got.ByHour[i] != wantHours[i] {
			t.Errorf("ByHour[%d] = %+v, want %+v", i, got.ByHour[i], wantHours[i])
		}
	}
}

// TestAnalyticsService_EmptyInput verifies every aggregate handles an empty
// collection without panicking
func TestAnalyticsService_EmptyInput(t *testing.T) {
	service := NewAnalyticsService(testLogger(), testMetrics)

	if got := service.TopAreas(nil); len(got) != 0 {
		t.Errorf("TopAreas = %+v, want empty", got)
	}
	if got := service.TopCrimeTypes(nil); len(got) != 0 {
		t.Errorf("TopCrimeTypes = %+v, want empty", got)
	}
	if got := service.StatusDistribution(nil); len(got) != 0 {
		t.Errorf("StatusDistribution = %+v, want empty", got)
	}
	if got := service.TopWeapons(nil); len(got) != 0 {
		t.Errorf("TopWeapons = %+v, want empty", got)
	}
	if got := service.VictimSexDistribution(nil); len(got) != 0 {
		t.Errorf("VictimSexDistribution = %+v, want empty", got)
	}
	if got := service.GeoSample(nil); len(got) != 0 {
		t.Errorf("GeoSample = %+v, want empty", got)
	}

	crossTab := service.CrimeTypesByArea(nil)
	if len(crossTab.Columns) != 0 || len(crossTab.Rows) != 0 {
		t.Errorf("CrimeTypesByArea = %+v, want empty", crossTab)
	}

	histogram := service.VictimAgeHistogram(nil)
	if histogram.SampleSize != 0 || len(histogram.Bins) != 0 {
		t.Errorf("VictimAgeHistogram = %+v, want empty", histogram)
	}

	trends := service.Trends(nil)
	if len(trends.ByYear) != 0 || len(trends.ByDayOfWeek) != 0 || len(trends.ByHour) != 0 {
		t.Errorf("Trends = %+v, want empty", trends)
	}
}
