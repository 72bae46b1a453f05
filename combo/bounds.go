package combo

import (
	"errors"
	"fmt"
)

// MinDensitySpan is the smallest allowed gap between the density bounds: a
// range must be wide enough to hold a full combination.
const MinDensitySpan = Size - 1

// ErrDensityRange reports density bounds that are inverted, too narrow, or
// outside the numeric range.
var ErrDensityRange = errors.New("invalid density range")

// Bounds is an inclusive numeric interval.
type Bounds struct {
	Lo int
	Hi int
}

// FullRange spans every valid number.
func FullRange(max int) Bounds {
	return Bounds{Lo: 1, Hi: max}
}

// Validate requires 1 <= Lo, Hi <= max and Hi >= Lo+MinDensitySpan.
func (b Bounds) Validate(max int) error {
	if b.Lo < 1 || b.Hi > max {
		return fmt.Errorf("%w: [%d, %d] outside [1, %d]", ErrDensityRange, b.Lo, b.Hi, max)
	}
	if b.Hi < b.Lo+MinDensitySpan {
		return fmt.Errorf("%w: hi=%d must be at least lo+%d=%d", ErrDensityRange, b.Hi, MinDensitySpan, b.Lo+MinDensitySpan)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d, %d]", b.Lo, b.Hi)
}
