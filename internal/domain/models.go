package domain

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used on every boundary (forms, CSV, store).
const DateLayout = "2006-01-02"

// RecordFields is the editable payload of a growth record: everything except id and date.
type RecordFields struct {
	HeightCM      float64 `db:"height_cm" json:"height_cm"`
	WeightKG      float64 `db:"weight_kg" json:"weight_kg"`
	SleepHours    float64 `db:"sleep_hours" json:"sleep_hours"`
	FormulaML     int     `db:"formula_ml" json:"formula_ml"`
	DiaperChanges int     `db:"diaper_changes" json:"diaper_changes"`
	HospitalVisit string  `db:"hospital_visit" json:"hospital_visit"`
	Note          string  `db:"note" json:"note"`
}

// GrowthRecord is one measurement event. ID is assigned by the store and
// Date is fixed at creation.
type GrowthRecord struct {
	ID   int64     `db:"id" json:"id"`
	Date time.Time `db:"date" json:"date"`
	RecordFields
}

// HasDate reports whether the record carries a usable calendar date.
func (r GrowthRecord) HasDate() bool { return !r.Date.IsZero() }

// HasHeight reports whether a height was recorded.
func (r GrowthRecord) HasHeight() bool { return measured(r.HeightCM) }

// HasWeight reports whether a weight was recorded.
func (r GrowthRecord) HasWeight() bool { return measured(r.WeightKG) }

func measured(v float64) bool { return !math.IsNaN(v) && v > 0 }

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// AgeUnit is the granularity a reference table or bucketer is keyed on.
type AgeUnit string

const (
	UnitMonth AgeUnit = "month"
	UnitDay   AgeUnit = "day"
)

// ReferenceEntry is one row of a growth standard, keyed by age in the
// table's unit.
type ReferenceEntry struct {
	Age      int     `yaml:"age" json:"age"`
	HeightCM float64 `yaml:"height_cm" json:"height_cm"`
	WeightKG float64 `yaml:"weight_kg" json:"weight_kg"`
}

// ReferenceTable is a static, sparse, age-keyed growth standard.
type ReferenceTable struct {
	Name    string           `yaml:"name" json:"name"`
	Unit    AgeUnit          `yaml:"unit" json:"unit"`
	Entries []ReferenceEntry `yaml:"entries" json:"entries"`
}

// ComparisonRow joins the personal means of one age bucket with the
// matching reference values.
type ComparisonRow struct {
	Bucket             int     `json:"bucket"`
	PersonalHeightMean float64 `json:"personal_height_mean"`
	PersonalWeightMean float64 `json:"personal_weight_mean"`
	ReferenceHeight    float64 `json:"reference_height"`
	ReferenceWeight    float64 `json:"reference_weight"`
}
