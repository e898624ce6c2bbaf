package growth

import (
	"strings"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// SeriesPoint is one date-indexed chart value.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DatedText is a date-indexed free-text entry.
type DatedText struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// Dashboard holds the chart series and logs derived from the record set.
type Dashboard struct {
	Height         []SeriesPoint `json:"height_cm"`
	Weight         []SeriesPoint `json:"weight_kg"`
	Sleep          []SeriesPoint `json:"sleep_hours"`
	Formula        []SeriesPoint `json:"formula_ml"`
	Diapers        []SeriesPoint `json:"diaper_changes"`
	HospitalVisits []DatedText   `json:"hospital_visits"`
	Notes          []DatedText   `json:"notes"`
}

// BuildDashboard turns date-ordered records into chart series. Records
// without a date are skipped, missing heights and weights leave gaps, and
// hospital visits keep non-blank entries only.
func BuildDashboard(records []domain.GrowthRecord) Dashboard {
	d := Dashboard{
		Height:         []SeriesPoint{},
		Weight:         []SeriesPoint{},
		Sleep:          []SeriesPoint{},
		Formula:        []SeriesPoint{},
		Diapers:        []SeriesPoint{},
		HospitalVisits: []DatedText{},
		Notes:          []DatedText{},
	}
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		date := r.Date.Format(domain.DateLayout)
		if r.HasHeight() {
			d.Height = append(d.Height, SeriesPoint{date, r.HeightCM})
		}
		if r.HasWeight() {
			d.Weight = append(d.Weight, SeriesPoint{date, r.WeightKG})
		}
		d.Sleep = append(d.Sleep, SeriesPoint{date, r.SleepHours})
		d.Formula = append(d.Formula, SeriesPoint{date, float64(r.FormulaML)})
		d.Diapers = append(d.Diapers, SeriesPoint{date, float64(r.DiaperChanges)})
		if v := strings.TrimSpace(r.HospitalVisit); v != "" {
			d.HospitalVisits = append(d.HospitalVisits, DatedText{date, v})
		}
		d.Notes = append(d.Notes, DatedText{date, r.Note})
	}
	return d
}
