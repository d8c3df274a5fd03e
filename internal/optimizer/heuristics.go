package optimizer

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

var (
	complexityIndicators = []string{
		"ai", "machine learning", "integration", "api", "cloud", "security",
		"compliance", "migration", "legacy", "real-time", "scalable",
	}
	clarityIndicators = []string{
		"technical specifications", "acceptance criteria", "performance requirements",
		"functional requirements", "deliverables", "scope of work",
	}
	vagueTerms     = []string{"as needed", "appropriate", "suitable", "reasonable"}
	costIndicators = []string{
		"payment schedule", "milestone", "contingency", "change order",
		"cost breakdown", "pricing model",
	}
	tcoIndicators = []string{
		"maintenance", "support", "operational costs", "lifecycle",
		"ongoing costs", "hosting", "infrastructure", "training",
	}
	modernizationTerms = []string{"migration", "legacy", "modernization"}
)

// countIndicators counts the terms that occur in lowered text.
func countIndicators(lowered string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			n++
		}
	}
	return n
}

func clampScore(v int) int {
	return max(1, min(dimensionMaxScore, v))
}

func complexityLevel(c int) string {
	switch {
	case c > 5:
		return "High"
	case c > 2:
		return "Medium"
	default:
		return "Low"
	}
}

func assessTimeline(months, complexity int, lowered string) int {
	if months <= 0 {
		return 5
	}
	score := 8
	switch {
	case complexity > 6:
		score -= 2
	case complexity > 3:
		score--
	}
	switch {
	case months < 6:
		score -= 2
	case months < 12:
		score--
	}
	if countIndicators(lowered, modernizationTerms) > 0 {
		score--
	}
	return clampScore(score)
}

func assessRequirements(lowered string) int {
	score := 7
	switch found := countIndicators(lowered, clarityIndicators); {
	case found >= 4:
		score++
	case found <= 2:
		score--
	}
	if countIndicators(lowered, vagueTerms) > 3 {
		score--
	}
	return clampScore(score)
}

func assessCost(budget float64, lowered string) int {
	score := 7
	if budget <= 0 {
		score--
	}
	switch found := countIndicators(lowered, costIndicators); {
	case found >= 3:
		score++
	case found <= 1:
		score--
	}
	return clampScore(score)
}

func assessTCO(lowered string) int {
	score := 6
	switch found := countIndicators(lowered, tcoIndicators); {
	case found >= 4:
		score += 2
	case found >= 2:
		score++
	case found == 0:
		score -= 2
	}
	return clampScore(score)
}

// insights holds the finding and recommendation lines picked up from a
// free-text response, keyed by dimension.
type insights map[models.Dimension][2][]string

// textInsights scans a non-JSON response for topics the generator touched.
// Short responses carry nothing usable.
func textInsights(response string) insights {
	out := insights{}
	if len(response) <= 100 {
		return out
	}
	lowered := strings.ToLower(response)
	if strings.Contains(lowered, "timeline") {
		out[models.DimensionTimeline] = [2][]string{
			{"Generated analysis raised timeline considerations"},
			{"Review timeline based on the generated analysis"},
		}
	}
	if strings.Contains(lowered, "requirement") {
		out[models.DimensionRequirements] = [2][]string{
			{"Generated analysis raised requirements considerations"},
			{"Clarify requirements based on the generated analysis"},
		}
	}
	if countIndicators(lowered, []string{"cost", "budget", "price"}) > 0 {
		out[models.DimensionCost] = [2][]string{
			{"Generated analysis raised cost considerations"},
			{"Review cost structure based on the generated analysis"},
		}
	}
	if countIndicators(lowered, []string{"maintenance", "support", "operational"}) > 0 {
		out[models.DimensionTCO] = [2][]string{
			{"Generated analysis raised lifecycle cost considerations"},
			{"Include operational costs based on the generated analysis"},
		}
	}
	return out
}

// pick returns the insight lines for d, or the defaults.
func (in insights) pick(d models.Dimension, findings, recommendations []string) ([]string, []string) {
	if got, ok := in[d]; ok {
		return got[0], got[1]
	}
	return findings, recommendations
}

// heuristicReview scores the RFP from its own text when the generator did
// not return the expected JSON.
func heuristicReview(response string, rfp models.RFPDocument) review {
	title := strings.TrimSpace(rfp.Title)
	if title == "" {
		title = "Unknown RFP"
	}
	lowered := strings.ToLower(rfp.Content)
	complexity := countIndicators(lowered, complexityIndicators)
	in := textInsights(response)

	timelineScore := assessTimeline(rfp.TimelineMonths, complexity, lowered)
	requirementsScore := assessRequirements(lowered)
	costScore := assessCost(rfp.Budget, lowered)
	tcoScore := assessTCO(lowered)

	duration := "Timeline not specified"
	if rfp.TimelineMonths > 0 {
		duration = fmt.Sprintf("Project duration: %d months", rfp.TimelineMonths)
	}
	budget := "Budget not specified"
	if rfp.Budget > 0 {
		budget = "Budget range: " + utils.FormatMoney(rfp.Budget)
	}

	var r review
	r.Synthesized = true

	findings, recs := in.pick(models.DimensionTimeline,
		[]string{"Timeline analysis for " + title, duration, "Complexity level: " + complexityLevel(complexity)},
		[]string{"Conduct detailed project planning and risk assessment", "Consider phased delivery approach for complex requirements"})
	r.Timeline = models.TimelineAnalysis{
		DimensionAnalysis:       dimension(timelineScore, findings, recs),
		TimelineAssessmentScore: timelineScore,
		RecommendedTimelineAdjustments: []string{
			fmt.Sprintf("Add 15-25%% buffer for %s complexity", title),
			"Include time for stakeholder reviews and approvals",
		},
		RiskFactors: []string{
			fmt.Sprintf("Project complexity with %d technical challenges identified", complexity),
			"Integration requirements may extend timeline",
		},
		HistoricalComparison: []string{
			fmt.Sprintf("Similar projects typically require %d months", rfp.TimelineMonths*12/10),
			"Industry average includes 20% timeline buffer",
		},
	}

	findings, recs = in.pick(models.DimensionRequirements,
		[]string{"Requirements analysis for " + title, "Technical specifications need detailed review", "Functional requirements assessment completed"},
		[]string{"Define specific acceptance criteria for all deliverables", "Clarify technical architecture requirements"})
	r.Requirements = models.RequirementsAnalysis{
		DimensionAnalysis:       dimension(requirementsScore, findings, recs),
		ClarityScore:            requirementsScore,
		RequirementGaps:         []string{"Performance metrics and SLA definitions", "Integration specifications and data formats"},
		SuggestedClarifications: []string{"Add detailed technical specifications", "Define measurable success criteria"},
		DeliverableAlignment:    fmt.Sprintf("Requirements for %s show moderate alignment with expected deliverables", title),
	}

	flexibility := "moderate"
	if costScore >= 7 {
		flexibility = "good"
	}
	findings, recs = in.pick(models.DimensionCost,
		[]string{"Cost analysis for " + title, budget, "Cost structure requires detailed breakdown"},
		[]string{"Implement detailed cost tracking and reporting", "Establish change management procedures"})
	r.Cost = models.CostStructureAnalysis{
		DimensionAnalysis:         dimension(costScore, findings, recs),
		CostStructureAssessment:   fmt.Sprintf("Budget structure for %s shows %s flexibility", title, flexibility),
		ChangeManagementReadiness: "Standard change management processes recommended",
		MissingCostCategories:     []string{"Risk mitigation and contingency costs", "Training and knowledge transfer expenses"},
		RecommendedContingencies: []string{
			fmt.Sprintf("10-15%% contingency for %s scope changes", title),
			"Additional buffer for integration complexities",
		},
	}

	realism := "potentially insufficient"
	if rfp.Budget > 100000 {
		realism = "realistic"
	}
	findings, recs = in.pick(models.DimensionTCO,
		[]string{"TCO analysis for " + title, "Lifecycle costs require comprehensive planning", "Operational expenses need detailed projection"},
		[]string{"Include 3-5 year operational cost projections", "Factor in maintenance and support expenses"})
	r.TCO = models.TCOAnalysis{
		DimensionAnalysis:    dimension(tcoScore, findings, recs),
		TCOCompletenessScore: tcoScore,
		MissingCostElements:  []string{"Long-term maintenance and support costs", "Infrastructure scaling and upgrade expenses"},
		LifecycleCostProjections: []string{
			"Estimated 3-year operational costs for " + title,
			"Include hosting, maintenance, and support expenses",
		},
		BudgetRealismCheck: fmt.Sprintf("Budget for %s appears %s for project scope", title, realism),
	}

	level := "moderate"
	if complexity > 5 {
		level = "high"
	}
	r.ExecutiveSummary = fmt.Sprintf("Analysis completed for %s. Project shows %s complexity with focus needed on timeline planning, requirements clarification, and comprehensive cost analysis.", title, level)
	r.PriorityActions = []string{
		"Conduct detailed technical review for " + title,
		"Establish comprehensive project timeline with appropriate buffers",
		"Develop detailed cost breakdown including lifecycle expenses",
	}
	return r
}

func dimension(score int, findings, recommendations []string) models.DimensionAnalysis {
	return models.DimensionAnalysis{
		Score:           score,
		MaxScore:        dimensionMaxScore,
		Findings:        findings,
		Recommendations: recommendations,
	}
}
