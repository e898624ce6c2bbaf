package growth

import (
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// Bucketer groups records by an age-derived key.
type Bucketer interface {
	Unit() domain.AgeUnit
	// Key returns the bucket of a record and false when the record cannot
	// be placed (no date, or dated before birth).
	Key(r domain.GrowthRecord) (int, bool)
	// RepresentativeDays is the age in days a bucket stands for when it is
	// matched against a table keyed on another unit.
	RepresentativeDays(key int) int
}

// MonthBucketer buckets by fixed 30-day months since Birth.
type MonthBucketer struct{ Birth time.Time }

func (MonthBucketer) Unit() domain.AgeUnit { return domain.UnitMonth }

func (b MonthBucketer) Key(r domain.GrowthRecord) (int, bool) {
	days, ok := ageOf(b.Birth, r)
	if !ok {
		return 0, false
	}
	return AgeMonthsBucket(days), true
}

func (MonthBucketer) RepresentativeDays(key int) int { return key * DaysPerMonth }

// DayBucketer buckets by age in days since Birth.
type DayBucketer struct{ Birth time.Time }

func (DayBucketer) Unit() domain.AgeUnit { return domain.UnitDay }

func (b DayBucketer) Key(r domain.GrowthRecord) (int, bool) { return ageOf(b.Birth, r) }

func (DayBucketer) RepresentativeDays(key int) int { return key }

func ageOf(birth time.Time, r domain.GrowthRecord) (int, bool) {
	if !r.HasDate() {
		return 0, false
	}
	days := AgeDays(birth, r.Date)
	if days < 0 {
		return 0, false
	}
	return days, true
}

type bucket struct {
	heights []aggregator.Point
	weights []aggregator.Point
}

// Compare aggregates records into per-bucket means and joins each bucket
// with its reference entry. Buckets lacking either side are dropped; the
// result is ordered by bucket key.
func Compare(records []domain.GrowthRecord, table domain.ReferenceTable, b Bucketer) []domain.ComparisonRow {
	if len(records) == 0 || len(table.Entries) == 0 {
		return []domain.ComparisonRow{}
	}

	buckets := make(map[int]*bucket)
	for _, r := range records {
		key, ok := b.Key(r)
		if !ok {
			continue
		}
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{}
			buckets[key] = bk
		}
		if r.HasHeight() {
			bk.heights = append(bk.heights, aggregator.Point{Value: r.HeightCM, Timestamp: r.Date})
		}
		if r.HasWeight() {
			bk.weights = append(bk.weights, aggregator.Point{Value: r.WeightKG, Timestamp: r.Date})
		}
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rows := make([]domain.ComparisonRow, 0, len(keys))
	for _, k := range keys {
		bk := buckets[k]
		if len(bk.heights) == 0 || len(bk.weights) == 0 {
			continue
		}
		ref, ok := lookup(table, b, k)
		if !ok {
			continue
		}
		rows = append(rows, domain.ComparisonRow{
			Bucket:             k,
			PersonalHeightMean: aggregator.Average(bk.heights),
			PersonalWeightMean: aggregator.Average(bk.weights),
			ReferenceHeight:    ref.HeightCM,
			ReferenceWeight:    ref.WeightKG,
		})
	}
	return rows
}

// lookup matches month buckets to a month table by key. Day-keyed tables are
// sparse, so every other pairing takes the nearest entry in days.
func lookup(table domain.ReferenceTable, b Bucketer, key int) (domain.ReferenceEntry, bool) {
	if table.Unit == domain.UnitMonth && b.Unit() == domain.UnitMonth {
		for _, e := range table.Entries {
			if e.Age == key {
				return e, true
			}
		}
		return domain.ReferenceEntry{}, false
	}
	e, ok := NearestEntry(table, b.RepresentativeDays(key))
	if !ok {
		return domain.ReferenceEntry{}, false
	}
	return *e, true
}

// NearestEntry returns the entry whose age, expressed in days, is closest
// to ageDays. Ties resolve to the smaller key.
func NearestEntry(table domain.ReferenceTable, ageDays int) (*domain.ReferenceEntry, bool) {
	var (
		best     *domain.ReferenceEntry
		bestDist int
		bestKey  int
	)
	for i := range table.Entries {
		e := &table.Entries[i]
		k := entryDays(table.Unit, e.Age)
		dist := k - ageDays
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist || (dist == bestDist && k < bestKey) {
			best, bestDist, bestKey = e, dist, k
		}
	}
	if best == nil {
		return nil, false
	}
	out := *best
	return &out, true
}

func entryDays(unit domain.AgeUnit, age int) int {
	if unit == domain.UnitMonth {
		return age * DaysPerMonth
	}
	return age
}
