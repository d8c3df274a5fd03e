// Package actions turns review recommendations into trackable action items.
package actions

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const titleExcerptRunes = 50

// Source is anything that carries recommendations. Both
// models.OptimizationAnalysis and models.ComparisonAnalysis satisfy it.
type Source interface {
	DimensionRecommendations() []models.DimensionRecommendations
	TopActions() []string
}

// Derive emits one short-term item per dimension recommendation, in
// dimension order, then one immediate item per top action. Duplicates are
// kept.
func Derive(src Source) []models.ActionItem {
	created := time.Now().UTC()
	var items []models.ActionItem

	add := func(title, description string, p models.Priority, d models.Dimension) {
		items = append(items, models.ActionItem{
			ID:          utils.GenerateID(),
			Title:       title,
			Description: description,
			Priority:    p,
			Dimension:   d,
			Position:    len(items),
			CreatedAt:   created,
		})
	}

	for _, dr := range src.DimensionRecommendations() {
		for _, rec := range dr.Recommendations {
			add(fmt.Sprintf("%s Optimization: %s...", capitalize(string(dr.Dimension)), excerpt(rec)),
				rec, models.PriorityShortTerm, dr.Dimension)
		}
	}
	for i, action := range src.TopActions() {
		add(fmt.Sprintf("Priority Action %d: %s...", i+1, excerpt(action)),
			action, models.PriorityImmediate, models.DimensionGeneral)
	}

	if items == nil {
		items = []models.ActionItem{}
	}
	return items
}

// Group buckets items by priority. Every priority is present, and items
// keep their relative order.
func Group(items []models.ActionItem) map[models.Priority][]models.ActionItem {
	out := map[models.Priority][]models.ActionItem{
		models.PriorityImmediate: {},
		models.PriorityShortTerm: {},
		models.PriorityLongTerm:  {},
	}
	for _, it := range items {
		out[it.Priority] = append(out[it.Priority], it)
	}
	return out
}

// Summarize builds the grouped view returned to clients.
func Summarize(analysisID string, items []models.ActionItem) models.ActionItemsResponse {
	completed := 0
	for _, it := range items {
		if it.Completed {
			completed++
		}
	}
	return models.ActionItemsResponse{
		AnalysisID:     analysisID,
		ActionItems:    Group(items),
		TotalCount:     len(items),
		CompletedCount: completed,
	}
}

// Toggle sets the completion state. Completing an already completed item
// keeps its original timestamp.
func Toggle(item models.ActionItem, completed bool, at time.Time) models.ActionItem {
	switch {
	case !completed:
		item.Completed = false
		item.CompletedAt = nil
	case !item.Completed || item.CompletedAt == nil:
		t := at.UTC()
		item.Completed = true
		item.CompletedAt = &t
	}
	return item
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= titleExcerptRunes {
		return s
	}
	return string([]rune(s)[:titleExcerptRunes])
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
