package models

type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ProposalAnalysis is the per-proposal part of a comparison.
type ProposalAnalysis struct {
	ProposalID         string      `json:"proposal_id"`
	VendorName         string      `json:"vendor_name"`
	OverallScore       int         `json:"overall_score"`
	BudgetScore        int         `json:"budget_score"`
	TechnicalScore     int         `json:"technical_score"`
	TimelineScore      int         `json:"timeline_score"`
	Strengths          []string    `json:"strengths"`
	Concerns           []string    `json:"concerns"`
	RiskAssessment     string      `json:"risk_assessment"`
	StrategicAlignment string      `json:"strategic_alignment"`
	BudgetAnalysis     string      `json:"budget_analysis"`
	TimelineAnalysis   string      `json:"timeline_analysis"`
	ContactInfo        ContactInfo `json:"contact_info"`
}

type Recommendation struct {
	Rank       int    `json:"rank"`
	ProposalID string `json:"proposal_id"`
	Reasoning  string `json:"reasoning"`
}

// ComparisonAnalysis is the structured form of a generated proposal
// comparison. Synthesized is set when it was produced by the fallback path
// rather than decoded from generator output.
type ComparisonAnalysis struct {
	Proposals        []ProposalAnalysis `json:"proposals"`
	ExecutiveSummary string             `json:"executive_summary"`
	Recommendations  []Recommendation   `json:"recommendations"`
	Synthesized      bool               `json:"synthesized"`
}

// AnalysisResult is the display row for one analyzed proposal.
type AnalysisResult struct {
	ID             string     `json:"id"`
	Vendor         string     `json:"vendor"`
	FileName       string     `json:"file_name"`
	OverallScore   int        `json:"overall_score"`
	BudgetScore    int        `json:"budget_score"`
	TechnicalScore int        `json:"technical_score"`
	TimelineScore  int        `json:"timeline_score"`
	ProposedBudget string     `json:"proposed_budget"`
	Timeline       string     `json:"timeline"`
	Contact        string     `json:"contact"`
	Phone          string     `json:"phone"`
	Strengths      []string   `json:"strengths"`
	Concerns       []string   `json:"concerns"`
	RFPAlignment   *Alignment `json:"rfp_alignment,omitempty"`
}
