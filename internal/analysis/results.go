package analysis

import (
	"fmt"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

// Results projects an analysis onto display rows. Entries whose proposal_id
// matches none of proposals are dropped; alignments may be nil.
func Results(a models.ComparisonAnalysis, proposals []models.Proposal, alignments map[string]models.Alignment) []models.AnalysisResult {
	byID := make(map[string]models.Proposal, len(proposals))
	for _, p := range proposals {
		byID[p.ID] = p
	}

	results := make([]models.AnalysisResult, 0, len(a.Proposals))
	for _, pa := range a.Proposals {
		original, ok := byID[pa.ProposalID]
		if !ok {
			continue
		}

		budget := "$TBD"
		if original.Budget > 0 {
			budget = utils.FormatMoney(original.Budget)
		}

		row := models.AnalysisResult{
			ID:             pa.ProposalID,
			Vendor:         orDefault(pa.VendorName, defaultVendorName),
			FileName:       orDefault(original.Filename, "Unknown File"),
			OverallScore:   pa.OverallScore,
			BudgetScore:    pa.BudgetScore,
			TechnicalScore: pa.TechnicalScore,
			TimelineScore:  pa.TimelineScore,
			ProposedBudget: budget,
			Timeline:       fmt.Sprintf("%d months", original.TimelineMonths),
			Contact:        orDefault(pa.ContactInfo.Email, defaultContactEmail),
			Phone:          orDefault(pa.ContactInfo.Phone, defaultContactPhone),
			Strengths:      nonNil(pa.Strengths),
			Concerns:       nonNil(pa.Concerns),
		}
		if al, ok := alignments[pa.ProposalID]; ok {
			row.RFPAlignment = &al
		}
		results = append(results, row)
	}
	return results
}
