package ingest

import (
	"strings"

	"comboforge/combo"
)

// VariantBatch is the raw, not yet deduplicated, output of the variant
// parser. Raw keeps source order: first source first, line order within it.
type VariantBatch struct {
	Raw         []combo.Numbers
	Sources     []SourceStats
	Diagnostics []Diagnostic
}

// RawCount is the number of candidate variants before deduplication.
func (b VariantBatch) RawCount() int {
	return len(b.Raw)
}

// Purpose: Extract candidate variants from every source in order.
// Key aspects: Lines with fewer than four distinct valid numbers are discarded
// silently; an undecodable source is skipped with a warning.
// Upstream: pipeline.Runner.
// Downstream: DecodeText, ParseVariantLine.
func ParseVariants(sources []Source, max int) VariantBatch {
	batch := VariantBatch{Sources: make([]SourceStats, 0, len(sources))}
	for _, src := range sources {
		stats := SourceStats{Name: src.Name}
		text, err := DecodeText(src.Data)
		if err != nil {
			stats.Skipped = true
			batch.Sources = append(batch.Sources, stats)
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{Source: src.Name, Severity: SeverityWarning, Err: err})
			continue
		}
		for line := range strings.Lines(text) {
			stats.Lines++
			n, ok := ParseVariantLine(line, max)
			if !ok {
				stats.Discarded++
				continue
			}
			stats.Accepted++
			batch.Raw = append(batch.Raw, n)
		}
		batch.Sources = append(batch.Sources, stats)
	}
	return batch
}

// ParseVariantLine takes the first four distinct valid numbers of a line, in
// their original order, and returns them in canonical ascending order.
func ParseVariantLine(line string, max int) (combo.Numbers, bool) {
	picked := firstDistinct(ExtractNumbers(line, max), combo.Size)
	if len(picked) < combo.Size {
		return combo.Numbers{}, false
	}
	return combo.NewNumbers([combo.Size]int(picked)), true
}
