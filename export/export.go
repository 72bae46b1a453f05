// Package export writes and reads the selection exchange format: one record
// per line, `<id>,<n1> <n2> <n3> <n4>`, no header, every record terminated by
// a newline.
package export

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"comboforge/combo"
)

// ErrMalformed reports a line that does not follow the record grammar.
var ErrMalformed = errors.New("malformed export record")

// Record is one exported line.
type Record struct {
	ID      int
	Numbers combo.Numbers
}

// FormatRecord renders a single line without the trailing newline.
func FormatRecord(id int, n combo.Numbers) string {
	return strconv.Itoa(id) + "," + n.String()
}

// Write emits one record per variant, in order.
func Write(w io.Writer, variants []combo.Variant) error {
	bw := bufio.NewWriter(w)
	for _, v := range variants {
		if _, err := bw.WriteString(FormatRecord(v.ID, v.Numbers)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes is Write into memory.
func Bytes(variants []combo.Variant) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, variants)
	return buf.Bytes()
}

// Purpose: Parse an export back into records.
// Key aspects: Strict grammar; ids must be positive and unique, numbers must be
// four distinct ascending values in [1, max]. The first defect aborts with the
// 1-based line number.
// Upstream: cmd/exportcheck, round-trip tests.
// Downstream: ParseRecord.
func Read(r io.Reader, max int) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	var records []Record
	seen := make(map[int]struct{})
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rec, err := ParseRecord(scanner.Text(), max)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("line %d: %w: duplicate id %d", lineNo, ErrMalformed, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ParseRecord parses one line of the export format.
func ParseRecord(line string, max int) (Record, error) {
	idPart, comboPart, ok := strings.Cut(line, ",")
	if !ok {
		return Record{}, fmt.Errorf("%w: missing comma in %q", ErrMalformed, line)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 1 {
		return Record{}, fmt.Errorf("%w: bad id %q", ErrMalformed, idPart)
	}
	fields := strings.Split(comboPart, " ")
	if len(fields) != combo.Size {
		return Record{}, fmt.Errorf("%w: want %d space-separated numbers, got %q", ErrMalformed, combo.Size, comboPart)
	}
	vals := make([]int, combo.Size)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Record{}, fmt.Errorf("%w: bad number %q", ErrMalformed, f)
		}
		vals[i] = v
	}
	n, err := combo.NumbersFrom(vals, max)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if [combo.Size]int(vals) != [combo.Size]int(n) {
		return Record{}, fmt.Errorf("%w: numbers not ascending in %q", ErrMalformed, comboPart)
	}
	return Record{ID: id, Numbers: n}, nil
}
