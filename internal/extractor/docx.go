package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []string `xml:"t"`
}

type wordTable struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []wordParagraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func (p wordParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t)
		}
	}
	return b.String()
}

// ExtractDOCX reads word/document.xml out of the archive and joins paragraph
// text line by line. Table cells follow body paragraphs, one row per line.
func ExtractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX as ZIP: %w", err)
	}

	var documentFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			documentFile = f
			break
		}
	}
	if documentFile == nil {
		return "", fmt.Errorf("document.xml not found in DOCX")
	}

	rc, err := documentFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read document.xml: %w", err)
	}

	var doc wordDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		b.WriteString(p.text())
		b.WriteString("\n")
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				parts := make([]string, 0, len(c.Paragraphs))
				for _, p := range c.Paragraphs {
					parts = append(parts, p.text())
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString("\n")
		}
	}

	text := cleanText(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: DOCX has no text runs", ErrNoText)
	}
	return text, nil
}
