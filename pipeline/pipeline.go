// Package pipeline runs the consolidation, scoring and selection stages in
// order. Each stage consumes the complete output of the previous one and
// produces a new value; nothing is mutated in place. Completed runs can be
// memoized by a Cache keyed on the full input.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"comboforge/combo"
	"comboforge/dedup"
	"comboforge/export"
	"comboforge/filter"
	"comboforge/ingest"
	"comboforge/scoring"
	"comboforge/selection"
	"comboforge/stats"
)

// ErrParams wraps parameter validation failures.
var ErrParams = errors.New("invalid pipeline parameters")

// Input is the raw material of one run. A nil Rounds source means no history
// was supplied; every variant then scores 0.
type Input struct {
	Variants []ingest.Source
	Rounds   *ingest.Source
}

// Params are the tunables of one run.
type Params struct {
	MaxNumber int
	MinScore  int
	Selection selection.Config
}

// DefaultParams mirrors the configuration defaults.
func DefaultParams() Params {
	return Params{
		MaxNumber: combo.DefaultMaxNumber,
		MinScore:  filter.DefaultMinScore,
		Selection: selection.DefaultConfig(combo.DefaultMaxNumber),
	}
}

// Validate rejects parameters before any stage runs.
func (p Params) Validate() error {
	var errs []error
	if p.MaxNumber < combo.Size {
		errs = append(errs, fmt.Errorf("max number %d is below %d", p.MaxNumber, combo.Size))
	}
	if p.MinScore < 0 {
		errs = append(errs, fmt.Errorf("min score %d is negative", p.MinScore))
	}
	if p.MaxNumber >= combo.Size {
		if err := p.Selection.Validate(p.MaxNumber); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrParams, errors.Join(errs...))
}

// Result holds the output of every stage. It is shared through the cache and
// must not be modified.
type Result struct {
	Store       *dedup.Store
	Rounds      []combo.Round
	Ranked      []combo.Variant
	Filtered    []combo.Variant
	Selection   selection.Selection
	Diagnostics []ingest.Diagnostic
	Report      stats.Report
}

// Export writes the selection in the exchange format.
func (r *Result) Export(w io.Writer) error {
	return export.Write(w, r.Selection.Variants())
}

// Runner executes runs, consulting the cache first when one is configured.
type Runner struct {
	logger *zap.Logger
	cache  *Cache
}

// NewRunner wires a runner. Both arguments are optional.
func NewRunner(logger *zap.Logger, cache *Cache) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, cache: cache}
}

// Purpose: Execute every stage for one input and parameter set.
// Key aspects: Parameters are validated before any work; input defects become
// diagnostics on the result; a cached result is returned as-is.
// Upstream: CLI run command.
// Downstream: ingest, dedup, scoring, filter, selection, stats.
func (r *Runner) Run(in Input, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var key Key
	if r.cache != nil {
		key = KeyFor(in, p)
		if res, ok := r.cache.Get(key); ok {
			r.logger.Debug("pipeline cache hit", zap.Int("selected", res.Selection.Len()))
			return res, nil
		}
	}

	batch := ingest.ParseVariants(in.Variants, p.MaxNumber)
	diags := append([]ingest.Diagnostic(nil), batch.Diagnostics...)
	store := dedup.Build(batch.Raw)
	r.logger.Debug("variants consolidated",
		zap.Int("sources", len(in.Variants)),
		zap.Int("raw", store.RawCount()),
		zap.Int("unique", store.UniqueCount()),
		zap.Int("duplicates_removed", store.DuplicatesRemoved()))

	var rounds []combo.Round
	var roundStats *ingest.SourceStats
	if in.Rounds != nil {
		rb := ingest.ParseRounds(*in.Rounds, p.MaxNumber)
		rounds = rb.Rounds
		roundStats = &rb.Stats
		diags = append(diags, rb.Diagnostics...)
	}
	r.logger.Debug("rounds parsed", zap.Int("rounds", len(rounds)))

	ranked := scoring.Rank(store.Variants(), rounds, p.MaxNumber)
	filtered := filter.New(p.MinScore).Apply(ranked)
	r.logger.Debug("variants scored and filtered",
		zap.Int("matched", stats.Matched(ranked)),
		zap.Int("min_score", p.MinScore),
		zap.Int("kept", len(filtered)))

	sel, err := selection.Allocate(filtered, p.Selection, p.MaxNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParams, err)
	}

	for _, d := range diags {
		fields := []zap.Field{zap.String("source", d.Source), zap.Error(d.Err)}
		if d.Severity == ingest.SeverityError {
			r.logger.Error("input defect", fields...)
		} else {
			r.logger.Warn("input defect", fields...)
		}
	}

	res := &Result{
		Store:       store,
		Rounds:      rounds,
		Ranked:      ranked,
		Filtered:    filtered,
		Selection:   sel,
		Diagnostics: diags,
		Report:      buildReport(p, batch, roundStats, store, rounds, ranked, filtered, sel, diags),
	}
	if r.cache != nil {
		r.cache.Put(key, res)
	}
	return res, nil
}

func buildReport(
	p Params,
	batch ingest.VariantBatch,
	roundStats *ingest.SourceStats,
	store *dedup.Store,
	rounds []combo.Round,
	ranked, filtered []combo.Variant,
	sel selection.Selection,
	diags []ingest.Diagnostic,
) stats.Report {
	rep := stats.Report{
		MaxNumber:         p.MaxNumber,
		VariantSources:    batch.Sources,
		RoundSource:       roundStats,
		RawVariants:       store.RawCount(),
		UniqueVariants:    store.UniqueCount(),
		DuplicatesRemoved: store.DuplicatesRemoved(),
		Rounds:            len(rounds),
		Matched:           stats.Matched(ranked),
		MinScore:          p.MinScore,
		Filtered:          len(filtered),
		Target:            p.Selection.Target,
		SegmentA:          len(sel.SegmentA),
		SegmentB:          len(sel.SegmentB),
		Selected:          sel.Len(),
		Tiers:             stats.TierCounts(sel.Variants()),
	}
	if len(ranked) > 0 {
		rep.TopScore = ranked[0].Score
	}
	for _, d := range diags {
		rep.Diagnostics = append(rep.Diagnostics, d.Severity.String()+": "+d.Error())
	}
	return rep
}
