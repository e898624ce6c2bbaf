package growth

import (
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// WindowDays is the length of the trailing window, target day included.
const WindowDays = 7

// WindowStats holds trailing means. A nil mean means no record in the
// window carried that value.
type WindowStats struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Count      int       `json:"count"`
	HeightCM   *float64  `json:"height_cm,omitempty"`
	WeightKG   *float64  `json:"weight_kg,omitempty"`
	SleepHours *float64  `json:"sleep_hours,omitempty"`
	FormulaML  *float64  `json:"formula_ml,omitempty"`
}

// Empty reports whether no record fell inside the window.
func (w WindowStats) Empty() bool { return w.Count == 0 }

// InWindow returns the records dated within [target-6d, target].
func InWindow(records []domain.GrowthRecord, target time.Time) []domain.GrowthRecord {
	to := domain.Day(target)
	from := to.AddDate(0, 0, -(WindowDays - 1))
	var out []domain.GrowthRecord
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		d := domain.Day(r.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TrailingWindow computes the 7-day trailing means ending at target.
func TrailingWindow(records []domain.GrowthRecord, target time.Time) WindowStats {
	to := domain.Day(target)
	stats := WindowStats{From: to.AddDate(0, 0, -(WindowDays - 1)), To: to}

	var heights, weights, sleep, formula []aggregator.Point
	for _, r := range InWindow(records, target) {
		stats.Count++
		if r.HasHeight() {
			heights = append(heights, aggregator.Point{Value: r.HeightCM, Timestamp: r.Date})
		}
		if r.HasWeight() {
			weights = append(weights, aggregator.Point{Value: r.WeightKG, Timestamp: r.Date})
		}
		sleep = append(sleep, aggregator.Point{Value: r.SleepHours, Timestamp: r.Date})
		formula = append(formula, aggregator.Point{Value: float64(r.FormulaML), Timestamp: r.Date})
	}

	stats.HeightCM = average(heights)
	stats.WeightKG = average(weights)
	stats.SleepHours = average(sleep)
	stats.FormulaML = average(formula)
	return stats
}

func average(points []aggregator.Point) *float64 {
	if len(points) == 0 {
		return nil
	}
	v := aggregator.Average(points)
	return &v
}
