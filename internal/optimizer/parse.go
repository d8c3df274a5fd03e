package optimizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/analysis"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

const (
	maxPriorityActions = 3
	maxTimelineItems   = 3
	fallbackScore      = 5
)

var requiredDimensions = []string{"timeline_feasibility", "requirements_clarity", "cost_flexibility", "tco_analysis"}

// review is the dimension content of an analysis, before ids and the
// implementation timeline are attached.
type review struct {
	Timeline         models.TimelineAnalysis
	Requirements     models.RequirementsAnalysis
	Cost             models.CostStructureAnalysis
	TCO              models.TCOAnalysis
	PriorityActions  []string
	ExecutiveSummary string
	Synthesized      bool
}

// score accepts JSON numbers and numeric strings.
type score struct {
	value int
	set   bool
}

func (s *score) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch n := v.(type) {
	case float64:
		s.value, s.set = int(math.Trunc(n)), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			s.value, s.set = int(math.Trunc(parsed)), true
		}
	}
	return nil
}

// clamp bounds a dimension score to 1-10, using def when it was missing.
func (s score) clamp(def int) int {
	v := def
	if s.set {
		v = s.value
	}
	return max(1, min(dimensionMaxScore, v))
}

type wireDimension struct {
	Score           score    `json:"score"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

func (w wireDimension) model() models.DimensionAnalysis {
	return models.DimensionAnalysis{
		Score:           w.Score.clamp(fallbackScore),
		MaxScore:        dimensionMaxScore,
		Findings:        nonNil(w.Findings),
		Recommendations: nonNil(w.Recommendations),
	}
}

type wireReview struct {
	Timeline struct {
		wireDimension
		TimelineAssessmentScore        score    `json:"timeline_assessment_score"`
		RecommendedTimelineAdjustments []string `json:"recommended_timeline_adjustments"`
		RiskFactors                    []string `json:"risk_factors"`
		HistoricalComparison           []string `json:"historical_comparison"`
	} `json:"timeline_feasibility"`
	Requirements struct {
		wireDimension
		ClarityScore            score    `json:"clarity_score"`
		RequirementGaps         []string `json:"requirement_gaps"`
		SuggestedClarifications []string `json:"suggested_clarifications"`
		DeliverableAlignment    string   `json:"deliverable_alignment"`
	} `json:"requirements_clarity"`
	Cost struct {
		wireDimension
		CostStructureAssessment   string   `json:"cost_structure_assessment"`
		ChangeManagementReadiness string   `json:"change_management_readiness"`
		MissingCostCategories     []string `json:"missing_cost_categories"`
		RecommendedContingencies  []string `json:"recommended_contingencies"`
	} `json:"cost_flexibility"`
	TCO struct {
		wireDimension
		TCOCompletenessScore     score    `json:"tco_completeness_score"`
		MissingCostElements      []string `json:"missing_cost_elements"`
		LifecycleCostProjections []string `json:"lifecycle_cost_projections"`
		BudgetRealismCheck       string   `json:"budget_realism_check"`
	} `json:"tco_analysis"`
	ExecutiveSummary string   `json:"executive_summary"`
	PriorityActions  []string `json:"priority_actions"`
}

// hasKeys reports whether obj is a JSON object holding every key.
func hasKeys(obj string, keys ...string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return false
	}
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}

// parseReview decodes a generated review. It fails unless all four
// dimensions are present.
func parseReview(raw string) (review, bool) {
	obj, ok := analysis.ExtractObject(raw)
	if !ok || !hasKeys(obj, requiredDimensions...) {
		return review{}, false
	}

	var w wireReview
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return review{}, false
	}

	r := review{
		PriorityActions:  capList(nonNil(w.PriorityActions), maxPriorityActions),
		ExecutiveSummary: strings.TrimSpace(w.ExecutiveSummary),
	}

	r.Timeline = models.TimelineAnalysis{
		DimensionAnalysis:              w.Timeline.model(),
		RecommendedTimelineAdjustments: nonNil(w.Timeline.RecommendedTimelineAdjustments),
		RiskFactors:                    nonNil(w.Timeline.RiskFactors),
		HistoricalComparison:           nonNil(w.Timeline.HistoricalComparison),
	}
	r.Timeline.TimelineAssessmentScore = w.Timeline.TimelineAssessmentScore.clamp(r.Timeline.Score)

	r.Requirements = models.RequirementsAnalysis{
		DimensionAnalysis:       w.Requirements.model(),
		RequirementGaps:         nonNil(w.Requirements.RequirementGaps),
		SuggestedClarifications: nonNil(w.Requirements.SuggestedClarifications),
		DeliverableAlignment:    w.Requirements.DeliverableAlignment,
	}
	r.Requirements.ClarityScore = w.Requirements.ClarityScore.clamp(r.Requirements.Score)

	r.Cost = models.CostStructureAnalysis{
		DimensionAnalysis:         w.Cost.model(),
		CostStructureAssessment:   w.Cost.CostStructureAssessment,
		ChangeManagementReadiness: w.Cost.ChangeManagementReadiness,
		MissingCostCategories:     nonNil(w.Cost.MissingCostCategories),
		RecommendedContingencies:  nonNil(w.Cost.RecommendedContingencies),
	}

	r.TCO = models.TCOAnalysis{
		DimensionAnalysis:        w.TCO.model(),
		MissingCostElements:      nonNil(w.TCO.MissingCostElements),
		LifecycleCostProjections: nonNil(w.TCO.LifecycleCostProjections),
		BudgetRealismCheck:       w.TCO.BudgetRealismCheck,
	}
	r.TCO.TCOCompletenessScore = w.TCO.TCOCompletenessScore.clamp(r.TCO.Score)

	return r, true
}

func parseTimeline(raw string) (models.ImplementationTimeline, bool) {
	obj, ok := analysis.ExtractObject(raw)
	if !ok || !hasKeys(obj, "immediate", "short_term", "long_term") {
		return models.ImplementationTimeline{}, false
	}

	var t models.ImplementationTimeline
	if err := json.Unmarshal([]byte(obj), &t); err != nil {
		return models.ImplementationTimeline{}, false
	}
	return models.ImplementationTimeline{
		Immediate: capList(nonNil(t.Immediate), maxTimelineItems),
		ShortTerm: capList(nonNil(t.ShortTerm), maxTimelineItems),
		LongTerm:  capList(nonNil(t.LongTerm), maxTimelineItems),
	}, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func capList(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
