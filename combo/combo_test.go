package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumbersSortsAscending(t *testing.T) {
	n := NewNumbers([Size]int{20, 15, 10, 5})
	assert.Equal(t, Numbers{5, 10, 15, 20}, n)
	assert.Equal(t, NewNumbers([Size]int{5, 10, 15, 20}), n, "same multiset must compare equal")
	assert.Equal(t, "5 10 15 20", n.String())
}

func TestNumbersFromValidates(t *testing.T) {
	n, err := NumbersFrom([]int{66, 1, 30, 2}, DefaultMaxNumber)
	require.NoError(t, err)
	assert.Equal(t, Numbers{1, 2, 30, 66}, n)

	_, err = NumbersFrom([]int{1, 2, 3}, DefaultMaxNumber)
	assert.ErrorIs(t, err, ErrArity)

	_, err = NumbersFrom([]int{1, 2, 3, 67}, DefaultMaxNumber)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NumbersFrom([]int{0, 2, 3, 4}, DefaultMaxNumber)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NumbersFrom([]int{4, 2, 3, 4}, DefaultMaxNumber)
	assert.ErrorIs(t, err, ErrRepeated)
}

func TestCountWithin(t *testing.T) {
	n := Numbers{3, 10, 12, 40}
	assert.Equal(t, 3, n.CountWithin(Bounds{Lo: 1, Hi: 20}))
	assert.Equal(t, 4, n.CountWithin(FullRange(DefaultMaxNumber)))
	assert.Equal(t, 0, n.CountWithin(Bounds{Lo: 41, Hi: 66}))
	assert.Equal(t, 2, n.CountWithin(Bounds{Lo: 10, Hi: 12}), "bounds are inclusive")
}

func TestRoundMembership(t *testing.T) {
	r := NewRound([]int{30, 5, 10, 5, 15, 20})
	assert.Equal(t, 5, r.Len(), "duplicate members collapse")
	assert.Equal(t, []int{5, 10, 15, 20, 30}, r.Members())

	assert.True(t, r.ContainsAll(Numbers{5, 10, 15, 20}))
	assert.False(t, r.ContainsAll(Numbers{5, 10, 15, 21}))
	assert.False(t, r.Contains(0))
}

func TestRoundMembersIsACopy(t *testing.T) {
	r := NewRound([]int{1, 2, 3, 4})
	m := r.Members()
	m[0] = 99
	assert.True(t, r.Contains(1))
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{name: "full range", bounds: FullRange(66)},
		{name: "minimum span", bounds: Bounds{Lo: 10, Hi: 13}},
		{name: "too narrow", bounds: Bounds{Lo: 10, Hi: 12}, wantErr: true},
		{name: "inverted", bounds: Bounds{Lo: 30, Hi: 10}, wantErr: true},
		{name: "below range", bounds: Bounds{Lo: 0, Hi: 10}, wantErr: true},
		{name: "above range", bounds: Bounds{Lo: 60, Hi: 67}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate(66)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDensityRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVariantCopiesDoNotAlias(t *testing.T) {
	v := Variant{ID: 1, Numbers: Numbers{1, 2, 3, 4}}
	scored := v.WithScore(3).WithTier(TierMedium)
	assert.Zero(t, v.Score)
	assert.Equal(t, TierUnassigned, v.Tier)
	assert.Equal(t, 3, scored.Score)
	assert.Equal(t, "Medium", scored.Tier.String())
}
