// Package alignment scores how well a proposal fits an RFP across budget,
// timeline, technical and scope axes. Every function here is pure: the same
// inputs always produce the same Alignment.
package alignment

import (
	"fmt"
	"math"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const neutralScore = 50

// Analyze compares a proposal to an RFP. Unknown (zero) budgets or timelines
// yield neutral sub-scores instead of errors.
func Analyze(rfp models.RFPDocument, proposal models.Proposal) models.Alignment {
	var mismatches []models.Mismatch

	budget, m := scoreBudget(rfp.Budget, proposal.Budget)
	mismatches = append(mismatches, m...)

	timeline, m := scoreTimeline(rfp.TimelineMonths, proposal.TimelineMonths)
	mismatches = append(mismatches, m...)

	rfpContent := strings.ToLower(rfp.Content)
	proposalContent := strings.ToLower(proposal.Content)

	technical, m := scoreTechnical(rfpContent, proposalContent)
	mismatches = append(mismatches, m...)

	scope, m := scoreScope(rfpContent, proposalContent)
	mismatches = append(mismatches, m...)

	if mismatches == nil {
		mismatches = []models.Mismatch{}
	}

	overall := truncate(float64(budget+timeline+technical+scope) / 4)

	a := models.Alignment{
		Overall:    overall,
		Budget:     budget,
		Timeline:   timeline,
		Technical:  technical,
		Scope:      scope,
		Mismatches: mismatches,
	}
	a.Summary = summarize(a)
	return a
}

func scoreBudget(rfpBudget, proposalBudget float64) (int, []models.Mismatch) {
	if rfpBudget <= 0 || proposalBudget <= 0 {
		return neutralScore, nil
	}

	ratio := proposalBudget / rfpBudget
	requirement := "Budget: " + utils.FormatMoney(rfpBudget)
	offered := "Budget: " + utils.FormatMoney(proposalBudget)

	switch {
	case ratio > 1.2:
		severity := models.SeverityMedium
		if ratio > 1.5 {
			severity = models.SeverityHigh
		}
		return max(20, 100-truncate((ratio-1)*100)), []models.Mismatch{{
			Type:     models.MismatchBudget,
			Severity: severity,
			Message: fmt.Sprintf("Proposal budget (%s) exceeds RFP budget (%s) by %.1f%%",
				utils.FormatMoney(proposalBudget), utils.FormatMoney(rfpBudget), (ratio-1)*100),
			RFPRequirement: requirement,
			ProposalValue:  offered,
			Impact:         "May require budget reallocation or scope reduction",
		}}
	case ratio < 0.5:
		return max(60, 100-truncate((1-ratio)*50)), []models.Mismatch{{
			Type:     models.MismatchBudget,
			Severity: models.SeverityMedium,
			Message: fmt.Sprintf("Proposal budget (%s) is significantly lower than RFP budget (%s)",
				utils.FormatMoney(proposalBudget), utils.FormatMoney(rfpBudget)),
			RFPRequirement: requirement,
			ProposalValue:  offered,
			Impact:         "May indicate missing scope or unrealistic pricing",
		}}
	}
	return 100, nil
}

func scoreTimeline(rfpMonths, proposalMonths int) (int, []models.Mismatch) {
	if rfpMonths <= 0 || proposalMonths <= 0 {
		return neutralScore, nil
	}

	ratio := float64(proposalMonths) / float64(rfpMonths)
	requirement := fmt.Sprintf("Timeline: %d months", rfpMonths)
	offered := fmt.Sprintf("Timeline: %d months", proposalMonths)

	switch {
	case ratio > 1.3:
		severity := models.SeverityMedium
		if ratio > 1.8 {
			severity = models.SeverityHigh
		}
		return max(30, 100-truncate((ratio-1)*80)), []models.Mismatch{{
			Type:     models.MismatchTimeline,
			Severity: severity,
			Message: fmt.Sprintf("Proposal timeline (%d months) exceeds RFP timeline (%d months) by %.1f%%",
				proposalMonths, rfpMonths, (ratio-1)*100),
			RFPRequirement: requirement,
			ProposalValue:  offered,
			Impact:         "May delay project delivery and impact business objectives",
		}}
	case ratio < 0.6:
		return max(70, 100-truncate((1-ratio)*40)), []models.Mismatch{{
			Type:     models.MismatchTimeline,
			Severity: models.SeverityMedium,
			Message: fmt.Sprintf("Proposal timeline (%d months) is significantly shorter than RFP timeline (%d months)",
				proposalMonths, rfpMonths),
			RFPRequirement: requirement,
			ProposalValue:  offered,
			Impact:         "May indicate unrealistic timeline or missing project phases",
		}}
	}
	return 100, nil
}

func scoreTechnical(rfpContent, proposalContent string) (int, []models.Mismatch) {
	missing := missingCategories(technicalTaxonomy, rfpContent, proposalContent)
	if len(missing) == 0 {
		return 100, nil
	}

	mismatches := make([]models.Mismatch, 0, len(missing))
	for _, name := range missing {
		upper := strings.ToUpper(name)
		mismatches = append(mismatches, models.Mismatch{
			Type:           models.MismatchTechnical,
			Severity:       models.SeverityHigh,
			Message:        fmt.Sprintf("RFP requires %s capabilities but proposal doesn't address this requirement", upper),
			RFPRequirement: "Technical requirement: " + upper,
			ProposalValue:  "Not mentioned in proposal",
			Impact:         fmt.Sprintf("Missing %s implementation may affect project success", name),
		})
	}
	return max(20, 100-20*len(missing)), mismatches
}

func scoreScope(rfpContent, proposalContent string) (int, []models.Mismatch) {
	missing := missingCategories(scopeTaxonomy, rfpContent, proposalContent)
	if len(missing) == 0 {
		return 100, nil
	}

	mismatches := make([]models.Mismatch, 0, len(missing))
	for _, name := range missing {
		mismatches = append(mismatches, models.Mismatch{
			Type:           models.MismatchScope,
			Severity:       models.SeverityMedium,
			Message:        fmt.Sprintf("RFP mentions %s but proposal doesn't clearly address this scope element", name),
			RFPRequirement: "Scope requirement: " + name,
			ProposalValue:  "Not clearly addressed in proposal",
			Impact:         fmt.Sprintf("Unclear %s scope may lead to project disputes", name),
		})
	}
	return max(40, 100-15*len(missing)), mismatches
}

func summarize(a models.Alignment) string {
	var summary string
	switch {
	case a.Overall >= 90:
		summary = "Excellent alignment with RFP requirements."
	case a.Overall >= 75:
		summary = "Good alignment with RFP requirements."
	case a.Overall >= 60:
		summary = "Moderate alignment with some concerns."
	case a.Overall >= 40:
		summary = "Poor alignment with significant issues."
	default:
		summary = "Very poor alignment with major mismatches."
	}

	if n := a.CountSeverity(models.SeverityCritical); n > 0 {
		summary += fmt.Sprintf(" %d critical issue(s) identified.", n)
	} else if n := a.CountSeverity(models.SeverityHigh); n > 0 {
		summary += fmt.Sprintf(" %d high-priority issue(s) identified.", n)
	}
	return summary
}

// truncate drops the fractional part of a non-negative score component. The
// epsilon absorbs float error such as 14.999999999999998 for an exact 15.
func truncate(x float64) int {
	return int(math.Floor(x + 1e-9))
}
