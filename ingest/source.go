// Package ingest turns raw line-oriented text into candidate variants and
// drawn rounds. Input defects never abort a run: unreadable or undecodable
// sources are reported as diagnostics and skipped, malformed lines are
// discarded and counted.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrUndecodable reports a source whose bytes are not valid text.
	ErrUndecodable = errors.New("source is not valid UTF-8 or UTF-16 text")
	// ErrUnreadable reports a source that could not be read from disk.
	ErrUnreadable = errors.New("source could not be read")
)

// Source is one raw input buffer. Name identifies it in diagnostics and
// reports; Data is never modified.
type Source struct {
	Name string
	Data []byte
}

// Severity grades a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic describes an input defect that was recovered locally.
type Diagnostic struct {
	Source   string
	Line     int // 1-based; 0 when the whole source is affected
	Severity Severity
	Err      error
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", d.Source, d.Line, d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Source, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// SourceStats counts what a parser did with one source.
type SourceStats struct {
	Name      string `json:"name"`
	Lines     int    `json:"lines"`
	Accepted  int    `json:"accepted"`
	Discarded int    `json:"discarded"`
	Skipped   bool   `json:"skipped"`
}

// Purpose: Read each path into a Source, preserving order.
// Key aspects: Unreadable paths become warnings; the remaining files still load.
// Upstream: CLI run command.
// Downstream: os.ReadFile.
func LoadFiles(paths []string) ([]Source, []Diagnostic) {
	sources := make([]Source, 0, len(paths))
	var diags []Diagnostic
	for _, path := range paths {
		src, err := LoadFile(path)
		if err != nil {
			diags = append(diags, Diagnostic{Source: path, Severity: SeverityWarning, Err: err})
			continue
		}
		sources = append(sources, src)
	}
	return sources, diags
}

// LoadFile reads a single source from disk.
func LoadFile(path string) (Source, error) {
	clean := filepath.Clean(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return Source{Name: clean, Data: data}, nil
}
