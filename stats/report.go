// Package stats summarizes a pipeline run: what was ingested, how much
// deduplication removed, how many variants survived each stage, and how the
// selection splits across segments and risk tiers. Reports render as console
// lines or JSON.
package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"comboforge/combo"
	"comboforge/ingest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is an immutable snapshot of one pipeline run.
type Report struct {
	RunID             string               `json:"run_id,omitempty"`
	MaxNumber         int                  `json:"max_number"`
	VariantSources    []ingest.SourceStats `json:"variant_sources"`
	RoundSource       *ingest.SourceStats  `json:"round_source,omitempty"`
	RawVariants       int                  `json:"raw_variants"`
	UniqueVariants    int                  `json:"unique_variants"`
	DuplicatesRemoved int                  `json:"duplicates_removed"`
	Rounds            int                  `json:"rounds"`
	Matched           int                  `json:"matched"`
	MinScore          int                  `json:"min_score"`
	Filtered          int                  `json:"filtered"`
	Target            int                  `json:"target"`
	SegmentA          int                  `json:"segment_a"`
	SegmentB          int                  `json:"segment_b"`
	Selected          int                  `json:"selected"`
	TopScore          int                  `json:"top_score"`
	Tiers             map[string]int       `json:"tiers"`
	Diagnostics       []string             `json:"diagnostics,omitempty"`
}

// TierCounts tallies the risk tiers of vs. Every assignable tier is present,
// even with a zero count.
func TierCounts(vs []combo.Variant) map[string]int {
	counts := make(map[string]int, len(combo.Tiers))
	for _, t := range combo.Tiers {
		counts[t.String()] = 0
	}
	for _, v := range vs {
		if v.Tier == combo.TierUnassigned {
			continue
		}
		counts[v.Tier.String()]++
	}
	return counts
}

// Matched counts the variants with a positive score.
func Matched(vs []combo.Variant) int {
	n := 0
	for _, v := range vs {
		if v.Score > 0 {
			n++
		}
	}
	return n
}

// SnapshotLines returns human-readable stats ready for console display.
func (r Report) SnapshotLines() []string {
	lines := make([]string, 0, 6+len(r.VariantSources))
	for _, src := range r.VariantSources {
		lines = append(lines, formatSource("Variants", src))
	}
	if r.RoundSource != nil {
		lines = append(lines, formatSource("Rounds", *r.RoundSource))
	}
	lines = append(lines,
		fmt.Sprintf("Consolidation: %s raw | %s unique | -%s duplicates",
			humanize.Comma(int64(r.RawVariants)),
			humanize.Comma(int64(r.UniqueVariants)),
			humanize.Comma(int64(r.DuplicatesRemoved))),
		fmt.Sprintf("Scoring: %s rounds | %s variants matched (top score %d)",
			humanize.Comma(int64(r.Rounds)),
			humanize.Comma(int64(r.Matched)),
			r.TopScore),
		fmt.Sprintf("Filter: min_score=%d | %s kept", r.MinScore, humanize.Comma(int64(r.Filtered))),
		fmt.Sprintf("Selection: %s of %s (A=%s, B=%s)",
			humanize.Comma(int64(r.Selected)),
			humanize.Comma(int64(r.Target)),
			humanize.Comma(int64(r.SegmentA)),
			humanize.Comma(int64(r.SegmentB))),
		formatTiers(r.Tiers),
	)
	return lines
}

// JSON renders the report indented for summary files.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func formatSource(label string, src ingest.SourceStats) string {
	if src.Skipped {
		return fmt.Sprintf("%s %s: skipped", label, src.Name)
	}
	return fmt.Sprintf("%s %s: %s lines, %s accepted, %s discarded", label, src.Name,
		humanize.Comma(int64(src.Lines)),
		humanize.Comma(int64(src.Accepted)),
		humanize.Comma(int64(src.Discarded)))
}

func formatTiers(tiers map[string]int) string {
	var b strings.Builder
	b.WriteString("Risk tiers: ")
	for i, t := range combo.Tiers {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", t, humanize.Comma(int64(tiers[t.String()])))
	}
	return b.String()
}
