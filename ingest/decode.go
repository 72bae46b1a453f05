package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts raw bytes to text. UTF-8 is the default; a UTF-8 or
// UTF-16 byte-order mark switches decoding and is stripped. Bytes that do not
// form valid text yield ErrUndecodable.
func DecodeText(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
	if !utf16 && !utf8.Valid(data) {
		return "", ErrUndecodable
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", ErrUndecodable
	}
	text := string(out)
	if utf16 && strings.ContainsRune(text, utf8.RuneError) {
		return "", ErrUndecodable
	}
	return text, nil
}
