package entities

import (
	"sort"
	"time"
)

// Result is the finalized dosha distribution of a completed quiz run.
// It is never mutated after creation; a new quiz run replaces it as a whole.
type Result struct {
	UserID         int64
	SessionID      string
	CatalogVersion string
	Percentages    map[Dosha]int // 0-100 per dosha, sum may drift from 100 with independent rounding
	Counts         Tally
	Answered       int // answered questions, the denominator of the percentages
	Total          int // questions in the catalog
	Dominant       Dosha
	Dual           bool // top two percentages within the dual threshold
	Tridoshic      bool // max-min spread within the tridoshic threshold
	CompletedAt    time.Time
}

// Sorted returns the doshas ordered by percentage, highest first.
// Equal percentages keep the fixed dosha order.
func (r *Result) Sorted() []Dosha {
	out := make([]Dosha, len(Doshas))
	copy(out, Doshas)
	sort.SliceStable(out, func(i, j int) bool {
		return r.Percentages[out[i]] > r.Percentages[out[j]]
	})
	return out
}

// Constitution returns a short label such as "Vata", "Vata-Pitta" or "Tridoshic".
func (r *Result) Constitution() string {
	if r.Tridoshic {
		return "Tridoshic"
	}
	sorted := r.Sorted()
	if r.Dual {
		return sorted[0].Title() + "-" + sorted[1].Title()
	}
	return r.Dominant.Title()
}
