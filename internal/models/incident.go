package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// RawIncident represents one row of the loaded dataset, values as read from the
// source file. No validation has happened at this point.
type RawIncident struct {
	DateOccurred      string
	TimeOccurred      string
	AreaName          string
	CrimeDescription  string
	VictimAge         string
	VictimSex         string
	CaseStatus        string
	Latitude          string
	Longitude         string
	WeaponDescription string
}

// Incident is a typed view of a row whose occurrence date parsed, plus the
// fields the cleaning pipeline derives. Missing or uncoercible optional values
// are nil pointers; a nil Hour means the time code was not numeric and the row
// is unusable for hour-of-day consumers only.
type Incident struct {
	Raw RawIncident

	OccurredOn time.Time
	Year       int
	Month      int
	DayOfWeek  string
	TimeCode   *float64
	Hour       *int

	AreaName          string
	CrimeDescription  string
	VictimSex         string
	CaseStatus        string
	WeaponDescription string

	VictimAge *int

	Latitude  *float64
	Longitude *float64
}

// dateFormats are the occurrence-date layouts seen in LAPD exports, most
// common first.
var dateFormats = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToIncident converts a RawIncident into an Incident. It parses the occurrence
// date and coerces victim age and coordinates; temporal derivation is done by
// the cleaning pipeline's derive stages. Only an unparsable date is an error;
// every other coercion failure just leaves the corresponding field nil.
func (r *RawIncident) ToIncident() (*Incident, error) {
	occurredOn, err := parseDate(r.DateOccurred)
	if err != nil {
		return nil, &ValidationError{
			Field:   "date_occurred",
			Value:   r.DateOccurred,
			Message: "unparsable occurrence date",
		}
	}

	inc := &Incident{
		Raw:               *r,
		OccurredOn:        occurredOn,
		AreaName:          strings.TrimSpace(r.AreaName),
		CrimeDescription:  strings.TrimSpace(r.CrimeDescription),
		VictimSex:         strings.TrimSpace(r.VictimSex),
		CaseStatus:        strings.TrimSpace(r.CaseStatus),
		WeaponDescription: strings.TrimSpace(r.WeaponDescription),
	}

	if age, ok := parseNumeric(r.VictimAge); ok {
		v := int(age)
		inc.VictimAge = &v
	}

	if lat, ok := parseNumeric(r.Latitude); ok {
		inc.Latitude = &lat
	}

	if lon, ok := parseNumeric(r.Longitude); ok {
		inc.Longitude = &lon
	}

	return inc, nil
}

// DeriveTemporal populates year, month and day-of-week from the parsed
// occurrence date.
func (i *Incident) DeriveTemporal() {
	i.Year = i.OccurredOn.Year()
	i.Month = int(i.OccurredOn.Month())
	i.DayOfWeek = i.OccurredOn.Weekday().String()
}

// CoerceTimeCode coerces the raw occurrence time to a numeric code. A
// non-numeric value leaves TimeCode nil; the row is kept either way.
func (i *Incident) CoerceTimeCode() {
	if code, ok := parseNumeric(i.Raw.TimeOccurred); ok {
		i.TimeCode = &code
	}
}

// DeriveHour sets the hour as the floor of the time code divided by 100.
// Codes outside 0000-2359 are kept as-is: "2500" yields hour 25, matching the
// source data's tolerance for malformed time codes.
func (i *Incident) DeriveHour() {
	if i.TimeCode == nil {
		return
	}
	hour := int(math.Floor(*i.TimeCode / 100))
	i.Hour = &hour
}

// HasCriticalFields reports whether area, crime description, victim sex and
// case status are all present.
func (i *Incident) HasCriticalFields() bool {
	return i.AreaName != "" && i.CrimeDescription != "" &&
		i.VictimSex != "" && i.CaseStatus != ""
}

// DuplicateKey returns a string identifying the full row, loaded and derived
// columns included. It is built from the parsed values, so rows that differ
// only in numeric spelling ("34.05" vs "34.0500") share a key.
func (i *Incident) DuplicateKey() string {
	return strings.Join([]string{
		i.OccurredOn.Format(time.RFC3339),
		floatKey(i.TimeCode),
		i.AreaName,
		i.CrimeDescription,
		intKey(i.VictimAge),
		i.VictimSex,
		i.CaseStatus,
		floatKey(i.Latitude),
		floatKey(i.Longitude),
		i.WeaponDescription,
		strconv.Itoa(i.Year),
		strconv.Itoa(i.Month),
		i.DayOfWeek,
		intKey(i.Hour),
	}, "\x1f")
}

func floatKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func intKey(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "date_occurred", Message: "empty date"}
	}

	var lastErr error
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseNumeric coerces a raw cell to a float, reporting false for empty or
// non-numeric values.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ValidationError represents a row-level data validation failure
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
