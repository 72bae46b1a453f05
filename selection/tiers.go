package selection

import (
	"slices"

	"comboforge/combo"
)

// AssignTiers labels every variant with a risk tier derived from its score
// relative to the other members of the same set, and returns a new slice in
// the same order.
//
// A zero score is always High. The positive scores, sorted descending, give
// two cut points: q1 at rank ceil(m/3) and q2 at rank ceil(2m/3), where m is
// the number of positive scores. Scores at or above q1 are Low, at or above q2
// Medium, the rest High.
func AssignTiers(variants []combo.Variant) []combo.Variant {
	positive := make([]int, 0, len(variants))
	for _, v := range variants {
		if v.Score > 0 {
			positive = append(positive, v.Score)
		}
	}
	slices.SortFunc(positive, func(a, b int) int { return b - a })

	var q1, q2 int
	if m := len(positive); m > 0 {
		q1 = positive[ceilDiv(m, 3)-1]
		q2 = positive[ceilDiv(2*m, 3)-1]
	}

	out := make([]combo.Variant, len(variants))
	for i, v := range variants {
		out[i] = v.WithTier(tierFor(v.Score, q1, q2))
	}
	return out
}

func tierFor(score, q1, q2 int) combo.RiskTier {
	switch {
	case score <= 0:
		return combo.TierHigh
	case score >= q1:
		return combo.TierLow
	case score >= q2:
		return combo.TierMedium
	default:
		return combo.TierHigh
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
