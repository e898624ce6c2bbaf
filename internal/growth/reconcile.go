package growth

import (
	"fmt"
	"sort"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// UpdatePolicy decides which edited rows produce an update.
type UpdatePolicy string

const (
	// UpdateAlways issues a full-row update for every surviving row, changed or not.
	UpdateAlways UpdatePolicy = "always"
	// UpdateChanged only issues updates for rows whose fields differ from the original.
	UpdateChanged UpdatePolicy = "changed"
)

// ParseUpdatePolicy maps a configuration value to a policy. Empty means UpdateAlways.
func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	switch UpdatePolicy(s) {
	case "", UpdateAlways:
		return UpdateAlways, nil
	case UpdateChanged:
		return UpdateChanged, nil
	}
	return "", fmt.Errorf("unknown update policy %q", s)
}

// Update is the full field payload to write for one record.
type Update struct {
	ID     int64               `json:"id"`
	Fields domain.RecordFields `json:"fields"`
}

// Plan is the outcome of reconciling an edited copy against the last
// fetched record set. Updates and Deletions never share an id.
type Plan struct {
	Updates   []Update `json:"updates"`
	Deletions []int64  `json:"deletions"`
	// Rejected holds edited rows whose id was never issued by the store,
	// and repeats of an id already planned.
	Rejected []domain.GrowthRecord `json:"rejected"`
}

// Reconcile derives the updates and deletions that turn original into
// edited. Rows deleted in the editor become deletions. Rows carrying an id
// unknown to original, or repeating an earlier row's id, are rejected
// instead of applied; the first row for an id wins.
func Reconcile(original, edited []domain.GrowthRecord, policy UpdatePolicy) Plan {
	known := make(map[int64]domain.GrowthRecord, len(original))
	for _, r := range original {
		known[r.ID] = r
	}

	var plan Plan
	kept := make(map[int64]struct{}, len(edited))
	for _, r := range edited {
		orig, ok := known[r.ID]
		if !ok {
			plan.Rejected = append(plan.Rejected, r)
			continue
		}
		if _, dup := kept[r.ID]; dup {
			plan.Rejected = append(plan.Rejected, r)
			continue
		}
		kept[r.ID] = struct{}{}
		if policy == UpdateChanged && orig.RecordFields == r.RecordFields {
			continue
		}
		plan.Updates = append(plan.Updates, Update{ID: r.ID, Fields: r.RecordFields})
	}

	for id := range known {
		if _, ok := kept[id]; !ok {
			plan.Deletions = append(plan.Deletions, id)
		}
	}
	sort.Slice(plan.Deletions, func(i, j int) bool { return plan.Deletions[i] < plan.Deletions[j] })
	return plan
}
