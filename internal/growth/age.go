package growth

import (
	"math"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// DaysPerMonth is the fixed month length used for bucketing. It is not
// calendar aware.
const DaysPerMonth = 30

const day = 24 * time.Hour

// AgeDays returns target - birth in whole calendar days. The result is
// negative when target precedes birth.
func AgeDays(birth, target time.Time) int {
	return int(domain.Day(target).Sub(domain.Day(birth)) / day)
}

// AgeWeeks converts an age in days to weeks, rounded to one decimal.
func AgeWeeks(ageDays int) float64 {
	return math.Round(float64(ageDays)/7*10) / 10
}

// AgeMonthsBucket returns floor(ageDays / 30).
func AgeMonthsBucket(ageDays int) int {
	return floorDiv(ageDays, DaysPerMonth)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
