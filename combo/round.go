package combo

import "slices"

// Round is one drawn set of numbers. Members are kept sorted and unique so
// membership tests ignore repeated numbers on the source line.
type Round struct {
	members []int
}

// NewRound copies vals, dropping duplicates.
func NewRound(vals []int) Round {
	members := slices.Clone(vals)
	slices.Sort(members)
	return Round{members: slices.Compact(members)}
}

// Len reports the number of distinct members.
func (r Round) Len() int {
	return len(r.members)
}

// Members returns a copy of the sorted members.
func (r Round) Members() []int {
	return slices.Clone(r.members)
}

// Contains reports whether v was drawn in this round.
func (r Round) Contains(v int) bool {
	_, ok := slices.BinarySearch(r.members, v)
	return ok
}

// ContainsAll reports whether every number of n was drawn in this round.
func (r Round) ContainsAll(n Numbers) bool {
	for _, v := range n {
		if !r.Contains(v) {
			return false
		}
	}
	return true
}
