// Package filter prunes scored variants that fall below a minimum score.
//
// Filter Logic:
//   - A variant passes when Score >= MinScore (inclusive lower bound)
//   - MinScore 0 disables filtering; every variant passes
//   - Order is preserved, so a score-ranked input stays ranked
//   - An empty result is valid and flows on to selection unchanged
//
// Raising MinScore can only remove variants: the result at a higher threshold
// is always a subset of the result at a lower one.
package filter

import (
	"fmt"

	"comboforge/combo"
)

// DefaultMinScore keeps variants that matched at least one round.
const DefaultMinScore = 1

// Filter holds the pruning thresholds applied after scoring.
type Filter struct {
	MinScore int
}

// New returns a filter with the given threshold. Negative thresholds are
// treated as 0.
func New(minScore int) Filter {
	if minScore < 0 {
		minScore = 0
	}
	return Filter{MinScore: minScore}
}

// Enabled reports whether the filter can reject anything.
func (f Filter) Enabled() bool {
	return f.MinScore > 0
}

// Matches returns true when v meets the threshold.
//
// Examples:
//
//	New(2).Matches(variant with Score 3)  → true
//	New(2).Matches(variant with Score 2)  → true (inclusive)
//	New(2).Matches(variant with Score 1)  → false
//	New(0).Matches(anything)              → true
func (f Filter) Matches(v combo.Variant) bool {
	return v.Score >= f.MinScore
}

// Apply returns the variants that pass, in their original order. The input is
// not modified.
func (f Filter) Apply(variants []combo.Variant) []combo.Variant {
	out := make([]combo.Variant, 0, len(variants))
	for _, v := range variants {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

func (f Filter) String() string {
	if !f.Enabled() {
		return "min_score=off"
	}
	return fmt.Sprintf("min_score>=%d", f.MinScore)
}
