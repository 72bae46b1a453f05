package ingest

import (
	"strings"

	"comboforge/combo"
)

// MinRoundSize is the fewest distinct valid numbers a line needs to count as
// a round.
const MinRoundSize = combo.Size

// RoundBatch holds the rounds parsed from one source.
type RoundBatch struct {
	Rounds      []combo.Round
	Stats       SourceStats
	Diagnostics []Diagnostic
}

// ParseRounds extracts one round per line with at least MinRoundSize distinct
// valid numbers. Undecodable input yields no rounds and an error diagnostic;
// callers treat that as an empty history rather than a failure.
func ParseRounds(src Source, max int) RoundBatch {
	batch := RoundBatch{Stats: SourceStats{Name: src.Name}}
	text, err := DecodeText(src.Data)
	if err != nil {
		batch.Stats.Skipped = true
		batch.Diagnostics = append(batch.Diagnostics, Diagnostic{Source: src.Name, Severity: SeverityError, Err: err})
		return batch
	}
	for line := range strings.Lines(text) {
		batch.Stats.Lines++
		round := combo.NewRound(ExtractNumbers(line, max))
		if round.Len() < MinRoundSize {
			batch.Stats.Discarded++
			continue
		}
		batch.Stats.Accepted++
		batch.Rounds = append(batch.Rounds, round)
	}
	return batch
}
