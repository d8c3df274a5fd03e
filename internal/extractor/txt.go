package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExtractTXT decodes a plain-text upload. BOMs select UTF-8 or UTF-16;
// anything that is not valid UTF-8 is read as Windows-1252.
func ExtractTXT(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty text file", ErrNoText)
	}

	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text file: %w", err)
	}

	text = cleanText(text)
	if text == "" {
		return "", fmt.Errorf("%w: text file is blank", ErrNoText)
	}
	return text, nil
}

func hasBOM(data []byte) bool {
	return (len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF) ||
		(len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)))
}

func decodeText(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), data)
	case utf8.Valid(data):
		return string(data), nil
	}
	return decodeWith(charmap.Windows1252, data)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// cleanText normalizes line endings, drops NULs and blank lines, and trims
// every remaining line.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// looksLikeText samples the head of data and reports whether at least 80%
// of it is printable ASCII or whitespace.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if hasBOM(data) {
		return true
	}
	sample := data[:min(len(data), 512)]

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' || b >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) >= 0.8
}
