// Package extractor turns uploaded PDF, DOCX and plain-text files into text
// and guesses the budget, timeline, category and title a proposal states.
package extractor

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeTXT  = "text/plain"

	// A PDF yielding less text than this is treated as image-only.
	minExtractedChars = 50
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text could be extracted")
)

// Extraction is everything intake learns from one file.
type Extraction struct {
	Content string
	Guess   Guess
}

// ResolveContentType normalizes the declared content type, falling back to
// the filename extension when the client sent something generic.
func ResolveContentType(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		switch mt {
		case ContentTypePDF, ContentTypeDOCX, ContentTypeTXT:
			return mt
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ContentTypePDF
	case ".docx":
		return ContentTypeDOCX
	case ".txt", ".text", ".md":
		return ContentTypeTXT
	}
	return declared
}

// Extract returns the text content of data according to contentType.
func Extract(data []byte, contentType string) (string, error) {
	switch contentType {
	case ContentTypePDF:
		return ExtractPDF(data)
	case ContentTypeDOCX:
		return ExtractDOCX(data)
	case ContentTypeTXT:
		if !looksLikeText(data) {
			return "", fmt.Errorf("%w: file does not appear to be text", ErrUnsupportedType)
		}
		return ExtractTXT(data)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// Process extracts text and guesses metadata in one step.
func Process(data []byte, contentType, filename string) (Extraction, error) {
	content, err := Extract(data, ResolveContentType(contentType, filename))
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{Content: content, Guess: GuessFields(content, filename)}, nil
}
