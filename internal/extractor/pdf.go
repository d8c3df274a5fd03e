package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF returns the plain text of every readable page. Pages that fail
// to decode are skipped; an error is returned only when nothing was read.
func ExtractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n")
	}

	text := cleanText(b.String())
	if len(text) < minExtractedChars {
		return "", fmt.Errorf("%w: PDF may be image-based or corrupted", ErrNoText)
	}

	return text, nil
}
