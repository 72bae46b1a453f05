package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comboforge/config"
	"comboforge/ingest"
	"comboforge/pipeline"
	"comboforge/stats"
)

var errNoVariants = errors.New("no variant files configured")

// runOptions mirrors the config fields the command line can override. Only
// flags the user actually set are applied.
type runOptions struct {
	configPath  string
	variants    []string
	rounds      string
	out         string
	summaryJSON string
	minScore    int
	target      int
	segmentA    int
	densityLo   int
	densityHi   int
	maxNumber   int
	logLevel    string
	logFormat   string
	verbose     bool
	quiet       bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline and write the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return runPipeline(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.quiet)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file or directory (default $"+config.EnvConfigPath+")")
	f.StringArrayVar(&opts.variants, "variants", nil, "variant file; repeat for several, order matters")
	f.StringVar(&opts.rounds, "rounds", "", "round history file")
	f.StringVarP(&opts.out, "out", "o", "", "export path (default stdout)")
	f.StringVar(&opts.summaryJSON, "summary-json", "", "write the run summary as JSON")
	f.IntVar(&opts.minScore, "min-score", 0, "minimum score to keep a variant; 0 disables filtering")
	f.IntVar(&opts.target, "target", 0, "total selection size")
	f.IntVar(&opts.segmentA, "segment-a", 0, "Segment A cap")
	f.IntVar(&opts.densityLo, "density-lo", 0, "density range lower bound")
	f.IntVar(&opts.densityHi, "density-hi", 0, "density range upper bound")
	f.IntVar(&opts.maxNumber, "max-number", 0, "largest valid number")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "", "log format (auto, console, json)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level=debug")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the console summary")
	return cmd
}

// loadConfig resolves the config path from the flag, then the environment,
// and falls back to defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Purpose: Overlay explicitly set flags onto the loaded config.
// Key aspects: A narrower --max-number pulls the default density ceiling
// down with it and a smaller --target pulls an unset Segment A cap down, so a
// single flag does not produce an invalid combination. The result is
// revalidated.
// Upstream: run command.
// Downstream: config.Validate.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("variants") {
		cfg.Inputs.VariantFiles = o.variants
	}
	if changed("rounds") {
		cfg.Inputs.RoundsFile = o.rounds
	}
	if changed("out") {
		cfg.Output.Path = o.out
	}
	if changed("summary-json") {
		cfg.Output.SummaryJSON = o.summaryJSON
	}
	if changed("min-score") {
		cfg.SetMinScore(o.minScore)
	}
	if changed("max-number") {
		cfg.Numbers.Max = o.maxNumber
		if !changed("density-hi") && cfg.Selection.DensityHi > o.maxNumber {
			cfg.Selection.DensityHi = o.maxNumber
		}
	}
	if changed("target") {
		cfg.Selection.Target = o.target
		if !changed("segment-a") && cfg.Selection.SegmentACap > o.target {
			cfg.Selection.SegmentACap = max(o.target, 0)
		}
	}
	if changed("segment-a") {
		cfg.Selection.SegmentACap = o.segmentA
	}
	if changed("density-lo") {
		cfg.Selection.DensityLo = o.densityLo
	}
	if changed("density-hi") {
		cfg.Selection.DensityHi = o.densityHi
	}
	if changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	if changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	return cfg.Validate()
}

// Purpose: Execute one pipeline run end to end.
// Key aspects: Unreadable inputs are logged and reported, never fatal; the
// export is written before the summary so a summary failure cannot lose it.
// Upstream: run command.
// Downstream: ingest.LoadFiles, pipeline.Runner, stats.Report.
func runPipeline(cfg *config.Config, stdout, stderr io.Writer, quiet bool) error {
	if len(cfg.Inputs.VariantFiles) == 0 {
		return errNoVariants
	}
	runID := uuid.NewString()
	logs, err := newLogger(cfg.Logging, stderr, runID)
	if err != nil && logs == nil {
		return err
	}
	defer logs.Close()
	logger := logs.logger
	if err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}

	sources, loadDiags := ingest.LoadFiles(cfg.Inputs.VariantFiles)
	in := pipeline.Input{Variants: sources}
	if cfg.Inputs.RoundsFile != "" {
		src, err := ingest.LoadFile(cfg.Inputs.RoundsFile)
		if err != nil {
			loadDiags = append(loadDiags, ingest.Diagnostic{Source: cfg.Inputs.RoundsFile, Severity: ingest.SeverityError, Err: err})
		} else {
			in.Rounds = &src
		}
	}
	for _, d := range loadDiags {
		logger.Warn("input unavailable", zap.String("source", d.Source), zap.Error(d.Err))
	}

	params := pipeline.Params{
		MaxNumber: cfg.Numbers.Max,
		MinScore:  cfg.MinScore(),
		Selection: cfg.SelectionConfig(),
	}
	res, err := pipeline.NewRunner(logger, nil).Run(in, params)
	if err != nil {
		return err
	}

	if err := writeExport(res, cfg.Output.Path, stdout); err != nil {
		return err
	}
	logger.Info("selection written",
		zap.String("path", exportTarget(cfg.Output.Path)),
		zap.Int("segment_a", len(res.Selection.SegmentA)),
		zap.Int("segment_b", len(res.Selection.SegmentB)))

	report := res.Report
	report.RunID = runID
	if len(loadDiags) > 0 {
		lines := make([]string, 0, len(loadDiags)+len(report.Diagnostics))
		for _, d := range loadDiags {
			lines = append(lines, d.Severity.String()+": "+d.Error())
		}
		report.Diagnostics = append(lines, report.Diagnostics...)
	}
	if cfg.Output.SummaryJSON != "" {
		if err := writeSummary(report, cfg.Output.SummaryJSON); err != nil {
			return err
		}
	}
	if !quiet {
		for _, line := range report.SnapshotLines() {
			fmt.Fprintln(stderr, line)
		}
	}
	return nil
}

func writeExport(res *pipeline.Result, path string, stdout io.Writer) error {
	if path == "" {
		return res.Export(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := res.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	return f.Close()
}

func writeSummary(report stats.Report, path string) error {
	data, err := report.JSON()
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func exportTarget(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
