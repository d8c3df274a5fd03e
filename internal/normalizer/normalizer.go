// Package normalizer builds canonical Proposal and RFP records from intake
// output.
package normalizer

import (
	"math"
	"strings"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

// Meta describes the upload the extraction came from.
type Meta struct {
	Kind        models.DocumentKind
	Filename    string
	FileSize    int64
	ContentType string
	S3Key       string
}

// Normalize never fails. Unusable guesses collapse to the zero "unknown"
// sentinel so scoring degrades to neutral instead of erroring.
func Normalize(ex extractor.Extraction, meta Meta) models.Proposal {
	kind := meta.Kind
	if kind == "" {
		kind = models.KindProposal
	}

	title := strings.TrimSpace(ex.Guess.Title)
	if title == "" {
		title = extractor.TitleFromFilename(meta.Filename)
	}

	category := strings.TrimSpace(ex.Guess.Category)
	if category == "" {
		category = "General"
	}

	return models.Proposal{
		ID:             utils.GenerateID(),
		Kind:           kind,
		Title:          title,
		Content:        strings.TrimSpace(ex.Content),
		Budget:         sanitizeBudget(ex.Guess.Budget),
		TimelineMonths: max(0, ex.Guess.TimelineMonths),
		Category:       category,
		Filename:       meta.Filename,
		FileSize:       meta.FileSize,
		ContentType:    meta.ContentType,
		S3Key:          meta.S3Key,
		CreatedAt:      time.Now().UTC(),
	}
}

func sanitizeBudget(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
