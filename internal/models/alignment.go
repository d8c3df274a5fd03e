package models

type MismatchType string

const (
	MismatchBudget    MismatchType = "budget"
	MismatchTimeline  MismatchType = "timeline"
	MismatchTechnical MismatchType = "technical"
	MismatchScope     MismatchType = "scope"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Mismatch is a single discrepancy between an RFP requirement and what a
// proposal offers.
type Mismatch struct {
	Type           MismatchType `json:"type"`
	Severity       Severity     `json:"severity"`
	Message        string       `json:"message"`
	RFPRequirement string       `json:"rfp_requirement"`
	ProposalValue  string       `json:"proposal_value"`
	Impact         string       `json:"impact"`
}

// Alignment scores one proposal against one RFP. All scores are in [0,100]
// and Overall is the truncated mean of the four sub-scores.
type Alignment struct {
	Overall    int        `json:"overall_alignment_score"`
	Budget     int        `json:"budget_alignment"`
	Timeline   int        `json:"timeline_alignment"`
	Technical  int        `json:"technical_alignment"`
	Scope      int        `json:"scope_alignment"`
	Mismatches []Mismatch `json:"mismatches"`
	Summary    string     `json:"alignment_summary"`
}

// CountSeverity returns how many mismatches carry the given severity.
func (a Alignment) CountSeverity(s Severity) int {
	n := 0
	for _, m := range a.Mismatches {
		if m.Severity == s {
			n++
		}
	}
	return n
}
