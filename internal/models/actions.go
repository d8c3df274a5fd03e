package models

import (
	"time"
)

type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityShortTerm Priority = "short_term"
	PriorityLongTerm  Priority = "long_term"
)

type Dimension string

const (
	DimensionTimeline     Dimension = "timeline"
	DimensionRequirements Dimension = "requirements"
	DimensionCost         Dimension = "cost"
	DimensionTCO          Dimension = "tco"
	DimensionGeneral      Dimension = "general"
)

type ActionItem struct {
	ID          string     `json:"id" db:"id"`
	AnalysisID  string     `json:"analysis_id" db:"analysis_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Dimension   Dimension  `json:"dimension" db:"dimension"`
	Completed   bool       `json:"completed" db:"completed"`
	Position    int        `json:"-" db:"position"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type ActionItemUpdate struct {
	Completed bool `json:"completed"`
}

type ActionItemsResponse struct {
	AnalysisID     string                    `json:"analysis_id"`
	ActionItems    map[Priority][]ActionItem `json:"action_items"`
	TotalCount     int                       `json:"total_count"`
	CompletedCount int                       `json:"completed_count"`
}

// DimensionRecommendations lists one dimension's recommendations.
type DimensionRecommendations struct {
	Dimension       Dimension
	Recommendations []string
}

// DimensionRecommendations returns the four dimensions in review order.
func (a OptimizationAnalysis) DimensionRecommendations() []DimensionRecommendations {
	return []DimensionRecommendations{
		{Dimension: DimensionTimeline, Recommendations: a.TimelineFeasibility.Recommendations},
		{Dimension: DimensionRequirements, Recommendations: a.RequirementsClarity.Recommendations},
		{Dimension: DimensionCost, Recommendations: a.CostFlexibility.Recommendations},
		{Dimension: DimensionTCO, Recommendations: a.TCOAnalysis.Recommendations},
	}
}

func (a OptimizationAnalysis) TopActions() []string {
	return a.PriorityActions
}

// DimensionRecommendations is empty: a comparison has no dimensions.
func (c ComparisonAnalysis) DimensionRecommendations() []DimensionRecommendations {
	return nil
}

// TopActions returns the reasoning of each recommendation in order.
func (c ComparisonAnalysis) TopActions() []string {
	out := make([]string, 0, len(c.Recommendations))
	for _, r := range c.Recommendations {
		if r.Reasoning != "" {
			out = append(out, r.Reasoning)
		}
	}
	return out
}
