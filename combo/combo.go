// Package combo defines the canonical data model shared by every pipeline
// stage: the sorted four-number combination, the scored variant built on it,
// the drawn round a variant is matched against, and the density bounds used
// during selection.
package combo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// Size is the arity of every variant.
	Size = 4
	// DefaultMaxNumber is the upper bound of the numeric range when none is configured.
	DefaultMaxNumber = 66
)

var (
	// ErrArity reports a combination that does not hold exactly Size numbers.
	ErrArity = errors.New("combination must hold exactly 4 numbers")
	// ErrOutOfRange reports a number outside [1, max].
	ErrOutOfRange = errors.New("number out of range")
	// ErrRepeated reports a combination that repeats a number.
	ErrRepeated = errors.New("combination repeats a number")
)

// Numbers is a combination stored in ascending order. Two variants drawn from
// the same multiset of numbers always compare equal, so Numbers is safe to use
// directly as a map key.
type Numbers [Size]int

// NewNumbers sorts the supplied values into canonical order.
func NewNumbers(vals [Size]int) Numbers {
	n := Numbers(vals)
	slices.Sort(n[:])
	return n
}

// NumbersFrom builds a canonical combination from a slice and validates it
// against [1, max]. It is the strict counterpart of NewNumbers used by readers
// of already-exported data.
func NumbersFrom(vals []int, max int) (Numbers, error) {
	if len(vals) != Size {
		return Numbers{}, fmt.Errorf("%w: got %d", ErrArity, len(vals))
	}
	var raw [Size]int
	copy(raw[:], vals)
	n := NewNumbers(raw)
	if err := n.Validate(max); err != nil {
		return Numbers{}, err
	}
	return n, nil
}

// Validate checks range and distinctness. The receiver is assumed sorted.
func (n Numbers) Validate(max int) error {
	for i, v := range n {
		if v < 1 || v > max {
			return fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, v, max)
		}
		if i > 0 && n[i-1] == v {
			return fmt.Errorf("%w: %d", ErrRepeated, v)
		}
	}
	return nil
}

// CountWithin returns how many of the numbers fall inside b (inclusive).
func (n Numbers) CountWithin(b Bounds) int {
	count := 0
	for _, v := range n {
		if v >= b.Lo && v <= b.Hi {
			count++
		}
	}
	return count
}

// String renders the combination space-separated, as it appears in exports.
func (n Numbers) String() string {
	var b strings.Builder
	b.Grow(Size * 3)
	for i, v := range n {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Variant is a deduplicated combination with its stable identifier and the
// attributes attached by later stages.
type Variant struct {
	ID      int      // 1-based, dense, assigned in first-seen order
	Numbers Numbers  // canonical ascending combination
	Score   int      // rounds fully containing Numbers; 0 before scoring
	Tier    RiskTier // assigned during selection
}

// WithScore returns a copy of v carrying score.
func (v Variant) WithScore(score int) Variant {
	v.Score = score
	return v
}

// WithTier returns a copy of v carrying tier.
func (v Variant) WithTier(tier RiskTier) Variant {
	v.Tier = tier
	return v
}
