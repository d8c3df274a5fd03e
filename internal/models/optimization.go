package models

import (
	"time"
)

// DimensionAnalysis holds what every optimization dimension reports.
type DimensionAnalysis struct {
	Score           int      `json:"score"`
	MaxScore        int      `json:"max_score"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

type TimelineAnalysis struct {
	DimensionAnalysis
	TimelineAssessmentScore        int      `json:"timeline_assessment_score"`
	RecommendedTimelineAdjustments []string `json:"recommended_timeline_adjustments"`
	RiskFactors                    []string `json:"risk_factors"`
	HistoricalComparison           []string `json:"historical_comparison"`
}

type RequirementsAnalysis struct {
	DimensionAnalysis
	ClarityScore            int      `json:"clarity_score"`
	RequirementGaps         []string `json:"requirement_gaps"`
	SuggestedClarifications []string `json:"suggested_clarifications"`
	DeliverableAlignment    string   `json:"deliverable_alignment"`
}

type CostStructureAnalysis struct {
	DimensionAnalysis
	CostStructureAssessment   string   `json:"cost_structure_assessment"`
	ChangeManagementReadiness string   `json:"change_management_readiness"`
	MissingCostCategories     []string `json:"missing_cost_categories"`
	RecommendedContingencies  []string `json:"recommended_contingencies"`
}

type TCOAnalysis struct {
	DimensionAnalysis
	TCOCompletenessScore     int      `json:"tco_completeness_score"`
	MissingCostElements      []string `json:"missing_cost_elements"`
	LifecycleCostProjections []string `json:"lifecycle_cost_projections"`
	BudgetRealismCheck       string   `json:"budget_realism_check"`
}

type ImplementationTimeline struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// OptimizationAnalysis is the four-dimension health review of an RFP.
// OverallScore is the sum of the dimension scores, out of MaxScore.
type OptimizationAnalysis struct {
	AnalysisID             string                 `json:"analysis_id"`
	RFPDocumentID          string                 `json:"rfp_document_id"`
	AnalysisTimestamp      time.Time              `json:"analysis_timestamp"`
	OverallScore           int                    `json:"overall_score"`
	MaxScore               int                    `json:"max_score"`
	TimelineFeasibility    TimelineAnalysis       `json:"timeline_feasibility"`
	RequirementsClarity    RequirementsAnalysis   `json:"requirements_clarity"`
	CostFlexibility        CostStructureAnalysis  `json:"cost_flexibility"`
	TCOAnalysis            TCOAnalysis            `json:"tco_analysis"`
	PriorityActions        []string               `json:"priority_actions"`
	ImplementationTimeline ImplementationTimeline `json:"implementation_timeline"`
	ExecutiveSummary       string                 `json:"executive_summary"`
	Synthesized            bool                   `json:"synthesized"`
	ProcessingTimeSeconds  float64                `json:"processing_time_seconds"`
}

type OptimizationRequest struct {
	RFPDocumentID string `json:"rfp_document_id"`
}

type OptimizationSummary struct {
	AnalysisID       string    `json:"analysis_id" db:"id"`
	RFPDocumentID    string    `json:"rfp_document_id" db:"rfp_document_id"`
	OverallScore     int       `json:"overall_score" db:"overall_score"`
	MaxScore         int       `json:"max_score" db:"max_score"`
	ExecutiveSummary string    `json:"executive_summary" db:"executive_summary"`
	Synthesized      bool      `json:"synthesized" db:"synthesized"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
