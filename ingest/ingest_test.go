package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comboforge/combo"
)

func src(name, text string) Source {
	return Source{Name: name, Data: []byte(text)}
}

func TestParseVariantsCollapsesOrderAndDropsOutOfRange(t *testing.T) {
	batch := ParseVariants([]Source{src("a.txt", "5 10 15 20\n20 15 10 5\n1 2 3 67\n")}, combo.DefaultMaxNumber)

	want := []combo.Numbers{{5, 10, 15, 20}, {5, 10, 15, 20}}
	if diff := cmp.Diff(want, batch.Raw); diff != "" {
		t.Fatalf("raw variants mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, batch.RawCount())
	require.Len(t, batch.Sources, 1)
	assert.Equal(t, SourceStats{Name: "a.txt", Lines: 3, Accepted: 2, Discarded: 1}, batch.Sources[0])
	assert.Empty(t, batch.Diagnostics)
}

func TestParseVariantLineGrammar(t *testing.T) {
	tests := []struct {
		name string
		line string
		want combo.Numbers
		ok   bool
	}{
		{name: "commas", line: "4,3,2,1", want: combo.Numbers{1, 2, 3, 4}, ok: true},
		{name: "mixed separators", line: "  9 ,8\t7  6 ", want: combo.Numbers{6, 7, 8, 9}, ok: true},
		{name: "non numeric tokens ignored", line: "V1: 12 x 13 14 - 15", want: combo.Numbers{12, 13, 14, 15}, ok: true},
		{name: "first four taken", line: "1 2 3 4 5 6", want: combo.Numbers{1, 2, 3, 4}, ok: true},
		{name: "zero is out of range", line: "0 1 2 3", ok: false},
		{name: "signed tokens ignored", line: "-1 2 3 4", ok: false},
		{name: "leading zeros", line: "01 02 03 04", want: combo.Numbers{1, 2, 3, 4}, ok: true},
		{name: "repeats skipped", line: "5 5 6 7 8", want: combo.Numbers{5, 6, 7, 8}, ok: true},
		{name: "repeats leave too few", line: "5 5 6 7", ok: false},
		{name: "full width", line: "１　２，３ ６６", want: combo.Numbers{1, 2, 3, 66}, ok: true},
		{name: "huge token", line: "99999999999999999999999 1 2 3", ok: false},
		{name: "empty", line: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVariantLine(tt.line, combo.DefaultMaxNumber)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseVariantsRespectsConfiguredMax(t *testing.T) {
	batch := ParseVariants([]Source{src("a", "1 2 3 40\n1 2 3 4\n")}, 39)
	assert.Equal(t, []combo.Numbers{{1, 2, 3, 4}}, batch.Raw)
}

func TestParseVariantsSkipsUndecodableSource(t *testing.T) {
	bad := Source{Name: "bad.txt", Data: []byte{'1', ' ', 0xff, 0xfe, 0xfd, '\n'}}
	batch := ParseVariants([]Source{bad, src("good.txt", "1 2 3 4\n")}, combo.DefaultMaxNumber)

	assert.Equal(t, []combo.Numbers{{1, 2, 3, 4}}, batch.Raw)
	require.Len(t, batch.Diagnostics, 1)
	d := batch.Diagnostics[0]
	assert.Equal(t, "bad.txt", d.Source)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.ErrorIs(t, d, ErrUndecodable)
	require.Len(t, batch.Sources, 2)
	assert.True(t, batch.Sources[0].Skipped)
	assert.False(t, batch.Sources[1].Skipped)
}

func TestParseVariantsEmptyInput(t *testing.T) {
	batch := ParseVariants(nil, combo.DefaultMaxNumber)
	assert.Zero(t, batch.RawCount())
	assert.Empty(t, batch.Diagnostics)

	batch = ParseVariants([]Source{src("empty", "")}, combo.DefaultMaxNumber)
	assert.Zero(t, batch.RawCount())
}

func TestParseVariantsIsIdempotent(t *testing.T) {
	sources := []Source{src("a", "3 2 1 4\n7 8 9 10\n"), src("b", "10 9 8 7\n")}
	first := ParseVariants(sources, combo.DefaultMaxNumber)
	second := ParseVariants(sources, combo.DefaultMaxNumber)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second parse differs (-first +second):\n%s", diff)
	}
}

func TestDecodeTextHandlesByteOrderMarks(t *testing.T) {
	text, err := DecodeText(append([]byte{0xEF, 0xBB, 0xBF}, []byte("1 2 3 4")...))
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 4", text)

	// "1 2" in UTF-16LE with BOM.
	le := []byte{0xFF, 0xFE, '1', 0, ' ', 0, '2', 0}
	text, err = DecodeText(le)
	require.NoError(t, err)
	assert.Equal(t, "1 2", text)

	be := []byte{0xFE, 0xFF, 0, '1', 0, ' ', 0, '2'}
	text, err = DecodeText(be)
	require.NoError(t, err)
	assert.Equal(t, "1 2", text)

	_, err = DecodeText([]byte{0xC3, 0x28})
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestParseRounds(t *testing.T) {
	batch := ParseRounds(src("rounds.txt", "5 10 15 20 30\n1 2 3\n7,7,8,9,10,11\n4 4 4 4\n"), combo.DefaultMaxNumber)

	require.Len(t, batch.Rounds, 2)
	assert.Equal(t, []int{5, 10, 15, 20, 30}, batch.Rounds[0].Members())
	assert.Equal(t, []int{7, 8, 9, 10, 11}, batch.Rounds[1].Members())
	assert.Equal(t, SourceStats{Name: "rounds.txt", Lines: 4, Accepted: 2, Discarded: 2}, batch.Stats)
	assert.Empty(t, batch.Diagnostics)
}

func TestParseRoundsNoArityLimit(t *testing.T) {
	line := "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20"
	batch := ParseRounds(src("r", line), combo.DefaultMaxNumber)
	require.Len(t, batch.Rounds, 1)
	assert.Equal(t, 20, batch.Rounds[0].Len())
}

func TestParseRoundsUndecodableIsEmptyWithError(t *testing.T) {
	batch := ParseRounds(Source{Name: "r.bin", Data: []byte{0xff, 0xff, 0x00, 0x80}}, combo.DefaultMaxNumber)
	assert.Empty(t, batch.Rounds)
	require.Len(t, batch.Diagnostics, 1)
	assert.Equal(t, SeverityError, batch.Diagnostics[0].Severity)
	assert.True(t, batch.Stats.Skipped)
}

func TestLoadFilesReportsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "v1.txt")
	require.NoError(t, os.WriteFile(good, []byte("1 2 3 4\n"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	sources, diags := LoadFiles([]string{missing, good})
	require.Len(t, sources, 1)
	assert.Equal(t, good, sources[0].Name)
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], ErrUnreadable)
	assert.Contains(t, diags[0].Error(), "missing.txt")
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Source: "f", Line: 3, Err: ErrUndecodable}
	assert.Equal(t, "f:3: "+ErrUndecodable.Error(), d.Error())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
}
