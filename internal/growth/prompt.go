package growth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// ReferenceStats is the nearest-age reference row handed to the prompt
// builder, labelled with the standard it came from.
type ReferenceStats struct {
	Standard string
	AgeDays  int
	Entry    domain.ReferenceEntry
}

// BuildEntryPrompt assembles the diary prompt for a single record. Window
// averages are only included when the window holds records; reference
// values only when ref is non-nil.
func BuildEntryPrompt(r domain.GrowthRecord, window WindowStats, ref *ReferenceStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", r.Date.Format(domain.DateLayout))
	writeMeasurements(&b, r)
	fmt.Fprintf(&b, "Hospital visit: %s.\n", orNone(r.HospitalVisit))

	if !window.Empty() {
		fmt.Fprintf(&b, "Averages over the last %d days (%s to %s, %d records):",
			WindowDays, window.From.Format(domain.DateLayout), window.To.Format(domain.DateLayout), window.Count)
		var parts []string
		if window.HeightCM != nil {
			parts = append(parts, "height "+num(*window.HeightCM)+"cm")
		}
		if window.WeightKG != nil {
			parts = append(parts, "weight "+num(*window.WeightKG)+"kg")
		}
		if window.SleepHours != nil {
			parts = append(parts, "sleep "+num(*window.SleepHours)+"h")
		}
		if window.FormulaML != nil {
			parts = append(parts, "formula "+num(*window.FormulaML)+"ml")
		}
		b.WriteString(" " + strings.Join(parts, ", ") + ".\n")
	}

	if ref != nil {
		fmt.Fprintf(&b, "Reference values (%s) for a baby aged %d days: height %scm, weight %skg.\n",
			ref.Standard, ref.AgeDays, num(ref.Entry.HeightCM), num(ref.Entry.WeightKG))
	}

	b.WriteString("Using this information, write a warm 2-3 line parenting diary entry for today.")
	return b.String()
}

// BuildWeeklyPrompt assembles the weekly summary prompt from the records
// of one week, one line per record in the given order.
func BuildWeeklyPrompt(week []domain.GrowthRecord) string {
	var b strings.Builder
	if len(week) == 0 {
		b.WriteString("No records were entered this week.\n")
		b.WriteString("Write a short, gentle reminder encouraging the parent to keep logging daily.")
		return b.String()
	}

	fmt.Fprintf(&b, "Here are the baby's records for the week (%d entries):\n", len(week))
	for _, r := range week {
		date := "unknown date"
		if r.HasDate() {
			date = r.Date.Format(domain.DateLayout)
		}
		fmt.Fprintf(&b, "- %s: height %scm, weight %skg, sleep %sh, formula %dml, diapers %d, hospital %s",
			date, num(r.HeightCM), num(r.WeightKG), num(r.SleepHours), r.FormulaML, r.DiaperChanges, orNone(r.HospitalVisit))
		if note := strings.TrimSpace(r.Note); note != "" {
			fmt.Fprintf(&b, ", note %q", note)
		}
		b.WriteString("\n")
	}
	b.WriteString("Summarise the week's growth, sleep and feeding trends in a warm paragraph of 4-6 sentences, " +
		"noting anything that changed noticeably.")
	return b.String()
}

func writeMeasurements(b *strings.Builder, r domain.GrowthRecord) {
	fmt.Fprintf(b, "The baby's height is %scm and weight is %skg.\n", num(r.HeightCM), num(r.WeightKG))
	fmt.Fprintf(b, "Slept %s hours, drank %dml of formula, and had %d diaper changes.\n",
		num(r.SleepHours), r.FormulaML, r.DiaperChanges)
}

func num(v float64) string { return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) }

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
