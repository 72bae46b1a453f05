// Package selection partitions the filtered, score-ranked variants into the
// fixed-size output set.
//
// Segment A holds the best-ranked variants that satisfy the density
// predicate, up to a cap. Segment B fills the remaining quota from whatever
// is left of the pool, regardless of density. The result is clipped when the
// pool is too small and never padded.
package selection

import (
	"errors"
	"fmt"
	"slices"

	"comboforge/combo"
)

const (
	// DefaultTarget is the total selection size.
	DefaultTarget = 1165
	// DefaultSegmentACap bounds the high-confidence segment.
	DefaultSegmentACap = 750
	// DenseMinimum is how many of a variant's numbers must fall inside the
	// density bounds for it to qualify for Segment A.
	DenseMinimum = 3
)

var (
	// ErrSegmentCap reports a Segment A cap larger than the target size.
	ErrSegmentCap = errors.New("segment A cap exceeds target size")
	// ErrNegativeSize reports a negative target or cap.
	ErrNegativeSize = errors.New("selection sizes must not be negative")
)

// Config controls allocation.
type Config struct {
	Target      int
	SegmentACap int
	Density     combo.Bounds
}

// DefaultConfig uses the default quotas and a density range spanning every
// valid number.
func DefaultConfig(max int) Config {
	return Config{
		Target:      DefaultTarget,
		SegmentACap: DefaultSegmentACap,
		Density:     combo.FullRange(max),
	}
}

// Validate reports every configuration defect at once.
func (c Config) Validate(max int) error {
	var errs []error
	if c.Target < 0 || c.SegmentACap < 0 {
		errs = append(errs, fmt.Errorf("%w: target=%d segment_a_cap=%d", ErrNegativeSize, c.Target, c.SegmentACap))
	} else if c.SegmentACap > c.Target {
		errs = append(errs, fmt.Errorf("%w: %d > %d", ErrSegmentCap, c.SegmentACap, c.Target))
	}
	if err := c.Density.Validate(max); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Selection is the final ordered output: Segment A followed by Segment B.
type Selection struct {
	SegmentA []combo.Variant
	SegmentB []combo.Variant
}

// Len is |A| + |B|.
func (s Selection) Len() int {
	return len(s.SegmentA) + len(s.SegmentB)
}

// Variants returns Segment A followed by Segment B in a fresh slice.
func (s Selection) Variants() []combo.Variant {
	out := make([]combo.Variant, 0, s.Len())
	out = append(out, s.SegmentA...)
	return append(out, s.SegmentB...)
}

// Dense reports whether at least DenseMinimum numbers of n lie inside b.
func Dense(n combo.Numbers, b combo.Bounds) bool {
	return n.CountWithin(b) >= DenseMinimum
}

// Purpose: Allocate the two segments from a filtered, ranked pool.
// Key aspects: Validation happens before any work; segments are disjoint and
// keep pool order; risk tiers are assigned over the whole selection.
// Upstream: pipeline.Runner after filter.Apply.
// Downstream: Dense, AssignTiers.
func Allocate(pool []combo.Variant, cfg Config, max int) (Selection, error) {
	if err := cfg.Validate(max); err != nil {
		return Selection{}, err
	}

	taken := make([]bool, len(pool))
	segA := make([]combo.Variant, 0, min(cfg.SegmentACap, len(pool)))
	for i, v := range pool {
		if len(segA) == cfg.SegmentACap {
			break
		}
		if Dense(v.Numbers, cfg.Density) {
			segA = append(segA, v)
			taken[i] = true
		}
	}

	remaining := cfg.Target - len(segA)
	segB := make([]combo.Variant, 0, min(remaining, len(pool)-len(segA)))
	for i, v := range pool {
		if len(segB) == remaining {
			break
		}
		if !taken[i] {
			segB = append(segB, v)
		}
	}

	tiered := AssignTiers(slices.Concat(segA, segB))
	return Selection{
		SegmentA: tiered[:len(segA):len(segA)],
		SegmentB: tiered[len(segA):],
	}, nil
}
