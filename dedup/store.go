// Package dedup consolidates raw candidate variants into the Variant Store:
// exact duplicates collapse onto their first occurrence and every survivor
// receives a dense, 1-based identifier in first-seen order.
package dedup

import (
	"slices"

	"comboforge/combo"
)

// Store is the immutable, deduplicated set of variants. Variants are kept in
// id order, so id n lives at index n-1.
type Store struct {
	variants []combo.Variant
	rawCount int
}

// Purpose: Build a Variant Store from the raw parser output.
// Key aspects: First occurrence wins; ids follow the order of raw.
// Upstream: pipeline.Runner after ingest.ParseVariants.
// Downstream: combo.Numbers map keys.
func Build(raw []combo.Numbers) *Store {
	seen := make(map[combo.Numbers]struct{}, len(raw))
	variants := make([]combo.Variant, 0, len(raw))
	for _, n := range raw {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		variants = append(variants, combo.Variant{ID: len(variants) + 1, Numbers: n})
	}
	return &Store{variants: slices.Clip(variants), rawCount: len(raw)}
}

// RawCount is the number of variants seen before deduplication.
func (s *Store) RawCount() int {
	if s == nil {
		return 0
	}
	return s.rawCount
}

// UniqueCount is the number of variants held by the store.
func (s *Store) UniqueCount() int {
	if s == nil {
		return 0
	}
	return len(s.variants)
}

// DuplicatesRemoved is RawCount minus UniqueCount.
func (s *Store) DuplicatesRemoved() int {
	return s.RawCount() - s.UniqueCount()
}

// Variants returns a copy of the store in id order.
func (s *Store) Variants() []combo.Variant {
	if s == nil {
		return nil
	}
	return slices.Clone(s.variants)
}

// Lookup returns the variant carrying id.
func (s *Store) Lookup(id int) (combo.Variant, bool) {
	if s == nil || id < 1 || id > len(s.variants) {
		return combo.Variant{}, false
	}
	return s.variants[id-1], true
}
