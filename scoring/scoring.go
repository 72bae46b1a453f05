// Package scoring counts, for every variant, how many historical rounds
// contain all of its numbers, and ranks the variants by that count.
//
// Counting goes through an inverted index: each number maps to a bitset of
// the rounds that drew it, so a variant's score is the population count of
// the intersection of four bitsets. The result is identical to scanning
// every (variant, round) pair.
package scoring

import (
	"math/bits"
	"slices"

	"comboforge/combo"
)

// Index maps each number in [1, max] to the rounds that drew it.
type Index struct {
	rounds int
	words  int
	sets   [][]uint64 // sets[n] is the bitset for number n; sets[0] is unused
}

// Purpose: Build the number -> rounds bitset index.
// Key aspects: Members outside [1, max] are ignored; an empty history yields
// an index that scores everything 0.
// Upstream: Rank.
// Downstream: combo.Round.Members.
func NewIndex(rounds []combo.Round, max int) *Index {
	if max < 0 {
		max = 0
	}
	words := (len(rounds) + 63) / 64
	sets := make([][]uint64, max+1)
	for i, r := range rounds {
		for _, n := range r.Members() {
			if n < 1 || n > max {
				continue
			}
			if sets[n] == nil {
				sets[n] = make([]uint64, words)
			}
			sets[n][i/64] |= 1 << (uint(i) % 64)
		}
	}
	return &Index{rounds: len(rounds), words: words, sets: sets}
}

// Rounds reports how many rounds were indexed.
func (ix *Index) Rounds() int {
	return ix.rounds
}

// Count returns the number of indexed rounds containing every number of n.
func (ix *Index) Count(n combo.Numbers) int {
	var sets [combo.Size][]uint64
	for i, v := range n {
		if v < 1 || v >= len(ix.sets) || ix.sets[v] == nil {
			return 0
		}
		sets[i] = ix.sets[v]
	}
	total := 0
	for w := 0; w < ix.words; w++ {
		word := sets[0][w] & sets[1][w] & sets[2][w] & sets[3][w]
		total += bits.OnesCount64(word)
	}
	return total
}

// Purpose: Score every variant against the rounds and rank them.
// Key aspects: Returns a new slice ordered by descending score; ties keep their
// input order (stable). The input slice is not modified.
// Upstream: pipeline.Runner after dedup.Build.
// Downstream: NewIndex, Index.Count.
func Rank(variants []combo.Variant, rounds []combo.Round, max int) []combo.Variant {
	ix := NewIndex(rounds, max)
	ranked := make([]combo.Variant, len(variants))
	for i, v := range variants {
		ranked[i] = v.WithScore(ix.Count(v.Numbers))
	}
	slices.SortStableFunc(ranked, func(a, b combo.Variant) int {
		return b.Score - a.Score
	})
	return ranked
}
