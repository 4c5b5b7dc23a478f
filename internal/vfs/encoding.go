package vfs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDecode indicates content is not valid text in any supported encoding.
var ErrDecode = errors.New("cannot decode content")

// Encoding represents a character encoding.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 encoding (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 encoding with BOM.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is UTF-16 Little Endian.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 Big Endian.
	EncodingUTF16BE Encoding = "utf-16be"

	// EncodingUnknown marks content that is neither UTF-8 nor BOM-tagged.
	EncodingUnknown Encoding = "unknown"
)

// BOM (Byte Order Mark) constants
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding attempts to detect the encoding of file content.
// It checks for BOM markers first, then validates UTF-8.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(content):
		return EncodingUTF8
	}
	return EncodingUnknown
}

// Decode converts file content to a string. UTF-8 is accepted as is, a
// UTF-8 BOM is stripped, and UTF-16 content is transcoded according to its
// BOM. Anything else fails with ErrDecode.
func Decode(content []byte) (string, Encoding, error) {
	enc := DetectEncoding(content)
	switch enc {
	case EncodingUTF8:
		return string(content), enc, nil
	case EncodingUTF8BOM:
		if !utf8.Valid(content[len(bomUTF8):]) {
			return "", enc, fmt.Errorf("invalid %s content: %w", enc, ErrDecode)
		}
	case EncodingUnknown:
		return "", enc, fmt.Errorf("invalid utf-8 content: %w", ErrDecode)
	}

	// BOMOverride picks the decoder matching the BOM and drops the BOM.
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", enc, fmt.Errorf("%s: %v: %w", enc, err, ErrDecode)
	}
	return string(out), enc, nil
}

// NormalizeLineEndings converts CRLF and lone CR line endings to LF.
func NormalizeLineEndings(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// SplitLines splits text into lines after normalizing line endings.
// A trailing newline does not produce an extra empty line, and empty text
// yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = NormalizeLineEndings(text)
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// CountLines counts the number of lines in content.
func CountLines(content []byte) int {
	return len(SplitLines(string(content)))
}
