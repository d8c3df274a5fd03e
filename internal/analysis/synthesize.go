package analysis

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const (
	synthesizedSummary   = "Comprehensive analysis completed with competitive proposals received"
	synthesizedReasoning = "Best overall value proposition and technical capability"
)

// Synthesize builds a schema-complete analysis from the proposals alone.
// Scores vary by position so rows stay distinguishable; content is generic.
func Synthesize(proposals []models.Proposal) models.ComparisonAnalysis {
	rows := make([]models.ProposalAnalysis, 0, len(proposals))
	for i, p := range proposals {
		base := 85 + (i*3)%15

		vendor := strings.TrimSpace(strings.ReplaceAll(p.Title, "Proposal: ", ""))
		if vendor == "" {
			vendor = fmt.Sprintf("Vendor %d", i+1)
		}

		rows = append(rows, models.ProposalAnalysis{
			ProposalID:         p.ID,
			VendorName:         vendor,
			OverallScore:       base,
			BudgetScore:        max(70, base-5),
			TechnicalScore:     min(100, base+5),
			TimelineScore:      base,
			Strengths:          []string{"Strong technical approach", "Competitive pricing", "Proven track record"},
			Concerns:           []string{"Timeline may be aggressive", "Limited local presence"},
			RiskAssessment:     "Moderate risk level with standard mitigation strategies required",
			StrategicAlignment: "Good alignment with organizational objectives",
			BudgetAnalysis:     fmt.Sprintf("Budget of %s appears competitive for the scope", utils.FormatMoney(p.Budget)),
			TimelineAnalysis:   fmt.Sprintf("Proposed timeline of %d months is feasible", p.TimelineMonths),
			ContactInfo:        models.ContactInfo{Email: defaultContactEmail, Phone: defaultContactPhone},
		})
	}

	first := ""
	if len(rows) > 0 {
		first = rows[0].ProposalID
	}

	return models.ComparisonAnalysis{
		Proposals:        rows,
		ExecutiveSummary: synthesizedSummary,
		Recommendations:  []models.Recommendation{{Rank: 1, ProposalID: first, Reasoning: synthesizedReasoning}},
		Synthesized:      true,
	}
}

// Parse decodes raw generator output, falling back to Synthesize.
func Parse(raw string, proposals []models.Proposal) models.ComparisonAnalysis {
	if parsed, ok := Decode(raw).(Parsed); ok {
		return parsed.Analysis
	}
	return Synthesize(proposals)
}
