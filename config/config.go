// Package config loads the pipeline configuration from YAML. A path may name a
// single file or a directory; a directory merges every *.yaml / *.yml file in
// lexical order, later files overriding earlier ones field by field.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"comboforge/combo"
	"comboforge/filter"
	"comboforge/selection"
	"comboforge/strutil"
)

// EnvConfigPath overrides the config path when no flag is given.
const EnvConfigPath = "COMBOFORGE_CONFIG"

// ErrInvalid wraps every validation defect.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete pipeline configuration
type Config struct {
	Numbers   NumbersConfig   `yaml:"numbers"`
	Inputs    InputsConfig    `yaml:"inputs"`
	Filter    FilterConfig    `yaml:"filter"`
	Selection SelectionConfig `yaml:"selection"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`

	// LoadedFrom is the file or directory the configuration came from.
	LoadedFrom string `yaml:"-"`
}

// NumbersConfig bounds the numeric range
type NumbersConfig struct {
	Max int `yaml:"max"`
}

// InputsConfig names the raw sources. Relative paths resolve against the
// configuration's own directory.
type InputsConfig struct {
	VariantFiles []string `yaml:"variant_files"`
	RoundsFile   string   `yaml:"rounds_file"`
}

// FilterConfig contains threshold settings. MinScore is a pointer so an
// explicit 0 (filtering off) survives defaulting.
type FilterConfig struct {
	MinScore *int `yaml:"min_score"`
}

// SelectionConfig contains quota and density settings. Zero values take
// defaults; zero density bounds span the full numeric range.
type SelectionConfig struct {
	Target      int `yaml:"target"`
	SegmentACap int `yaml:"segment_a_cap"`
	DensityLo   int `yaml:"density_lo"`
	DensityHi   int `yaml:"density_hi"`
}

// OutputConfig names the export and the optional JSON run summary. An empty
// Path writes the export to stdout.
type OutputConfig struct {
	Path        string `yaml:"path"`
	SummaryJSON string `yaml:"summary_json"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // auto, console or json
	Dir           string `yaml:"dir"`    // daily log files; empty disables
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a YAML file or a directory of YAML files,
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config path: %w", err)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = yamlFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
		}
	}
	cfg.LoadedFrom = path
	base := path
	if !info.IsDir() {
		base = filepath.Dir(path)
	}
	cfg.resolvePaths(base)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files in config directory %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Inputs.VariantFiles {
		c.Inputs.VariantFiles[i] = resolve(p)
	}
	c.Inputs.RoundsFile = resolve(c.Inputs.RoundsFile)
	c.Output.Path = resolve(c.Output.Path)
	c.Output.SummaryJSON = resolve(c.Output.SummaryJSON)
	c.Logging.Dir = resolve(c.Logging.Dir)
}

func (c *Config) applyDefaults() {
	if c.Numbers.Max == 0 {
		c.Numbers.Max = combo.DefaultMaxNumber
	}
	if c.Filter.MinScore == nil {
		v := filter.DefaultMinScore
		c.Filter.MinScore = &v
	}
	if c.Selection.Target == 0 {
		c.Selection.Target = selection.DefaultTarget
	}
	if c.Selection.SegmentACap == 0 {
		c.Selection.SegmentACap = min(selection.DefaultSegmentACap, c.Selection.Target)
	}
	if c.Selection.DensityLo == 0 {
		c.Selection.DensityLo = 1
	}
	if c.Selection.DensityHi == 0 {
		c.Selection.DensityHi = c.Numbers.Max
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 7
	}
}

// Validate reports every defect at once, each wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Numbers.Max < combo.Size {
		invalid("numbers.max=%d must be at least %d", c.Numbers.Max, combo.Size)
	}
	if c.MinScore() < 0 {
		invalid("filter.min_score=%d must not be negative", c.MinScore())
	}
	if err := c.SelectionConfig().Validate(c.Numbers.Max); err != nil {
		invalid("selection: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level: %w", err)
	}
	switch strutil.NormalizeLower(c.Logging.Format) {
	case "auto", "console", "json":
	default:
		invalid("logging.format=%q must be auto, console or json", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		invalid("logging.retention_days=%d must not be negative", c.Logging.RetentionDays)
	}
	return errors.Join(errs...)
}

// MinScore returns the effective filter threshold.
func (c *Config) MinScore() int {
	if c.Filter.MinScore == nil {
		return filter.DefaultMinScore
	}
	return *c.Filter.MinScore
}

// SetMinScore overrides the filter threshold.
func (c *Config) SetMinScore(v int) {
	c.Filter.MinScore = &v
}

// SelectionConfig converts the YAML section into allocation parameters.
func (c *Config) SelectionConfig() selection.Config {
	return selection.Config{
		Target:      c.Selection.Target,
		SegmentACap: c.Selection.SegmentACap,
		Density:     combo.Bounds{Lo: c.Selection.DensityLo, Hi: c.Selection.DensityHi},
	}
}

// Print displays the configuration
func (c *Config) Print(w io.Writer) {
	if c.LoadedFrom != "" {
		fmt.Fprintf(w, "Config: %s\n", c.LoadedFrom)
	}
	fmt.Fprintf(w, "Numbers: 1..%d\n", c.Numbers.Max)
	if len(c.Inputs.VariantFiles) > 0 {
		fmt.Fprintf(w, "Variant files: %s\n", strings.Join(c.Inputs.VariantFiles, ", "))
	} else {
		fmt.Fprintln(w, "Variant files: (none)")
	}
	if c.Inputs.RoundsFile != "" {
		fmt.Fprintf(w, "Rounds file: %s\n", c.Inputs.RoundsFile)
	}
	fmt.Fprintf(w, "Filter: %s\n", filter.New(c.MinScore()))
	sel := c.SelectionConfig()
	fmt.Fprintf(w, "Selection: target=%d segment_a_cap=%d density=%s\n", sel.Target, sel.SegmentACap, sel.Density)
	out := c.Output.Path
	if out == "" {
		out = "stdout"
	}
	fmt.Fprintf(w, "Output: %s\n", out)
	if c.Output.SummaryJSON != "" {
		fmt.Fprintf(w, "Summary: %s\n", c.Output.SummaryJSON)
	}
	logDir := "off"
	if c.Logging.Dir != "" {
		logDir = fmt.Sprintf("%s (%d days)", c.Logging.Dir, c.Logging.RetentionDays)
	}
	fmt.Fprintf(w, "Logging: level=%s format=%s files=%s\n", c.Logging.Level, c.Logging.Format, logDir)
}
