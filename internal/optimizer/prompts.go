package optimizer

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const rfpExcerptChars = 3000

const reviewSchema = `{
  "timeline_feasibility": {
    "score": 7,
    "timeline_assessment_score": 7,
    "findings": ["specific finding about timeline based on RFP content"],
    "recommendations": ["specific actionable timeline recommendation"],
    "recommended_timeline_adjustments": ["specific timeline adjustment with rationale"],
    "risk_factors": ["specific timeline risk and mitigation strategy"],
    "historical_comparison": ["comparison with similar project type"]
  },
  "requirements_clarity": {
    "score": 7,
    "clarity_score": 7,
    "findings": ["specific finding"],
    "recommendations": ["specific recommendation"],
    "requirement_gaps": ["gap"],
    "suggested_clarifications": ["clarification"],
    "deliverable_alignment": "assessment of requirement-to-output coherence"
  },
  "cost_flexibility": {
    "score": 7,
    "findings": ["specific finding"],
    "recommendations": ["specific recommendation"],
    "cost_structure_assessment": "flexibility rating and recommendations",
    "change_management_readiness": "evaluation of change handling processes",
    "missing_cost_categories": ["missing category"],
    "recommended_contingencies": ["contingency with percentage"]
  },
  "tco_analysis": {
    "score": 7,
    "tco_completeness_score": 7,
    "findings": ["specific finding"],
    "recommendations": ["specific recommendation"],
    "missing_cost_elements": ["missing element"],
    "lifecycle_cost_projections": ["projection"],
    "budget_realism_check": "whether the budget aligns with true project costs"
  },
  "executive_summary": "2-3 sentence overview of key findings and priority recommendations",
  "priority_actions": ["most critical recommendation", "second priority", "third priority"]
}`

func analysisPrompt(rfp models.RFPDocument) string {
	title := rfp.Title
	if title == "" {
		title = "Unknown RFP"
	}
	budget := "Not specified"
	if rfp.Budget > 0 {
		budget = utils.FormatMoney(rfp.Budget)
	}
	timeline := "Not specified"
	if rfp.TimelineMonths > 0 {
		timeline = fmt.Sprintf("%d months", rfp.TimelineMonths)
	}

	var b strings.Builder
	b.WriteString(`You are an expert RFP optimization analyst. Analyze the RFP below and provide actionable
recommendations that improve project success rates, reduce risk and optimize resource allocation.

Evaluate these four dimensions:
1. TIMELINE FEASIBILITY & OPTIMIZATION
2. REQUIREMENTS CLARITY & DELIVERABLE ALIGNMENT
3. COST STRUCTURE & CHANGE MANAGEMENT
4. TOTAL COST OF OWNERSHIP (TCO) ANALYSIS

RFP DOCUMENT TO ANALYZE:
`)
	fmt.Fprintf(&b, "Title: %s\nContent: %s\nBudget: %s\nTimeline: %s\n\n",
		title, utils.Truncate(rfp.Content, rfpExcerptChars), budget, timeline)
	b.WriteString("Respond with ONLY valid JSON in exactly this format:\n\n")
	b.WriteString(reviewSchema)
	b.WriteString(`

REQUIREMENTS:
- All scores must be integers 1-10 justified by the RFP content
- Recommendations must be specific to this RFP
- Provide at most three priority actions`)
	return b.String()
}

func timelinePrompt(actions []string, summary string) string {
	var b strings.Builder
	b.WriteString("Based on the following RFP optimization analysis and priority actions, create an implementation timeline " +
		"categorized into immediate (0-1 week), short-term (1-4 weeks) and long-term (1-3 months) actions.\n\nPriority Actions:\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	fmt.Fprintf(&b, "\nAnalysis Summary:\n%s\n\n", summary)
	b.WriteString(`Provide the response in JSON format:
{
  "immediate": ["action 1", "action 2"],
  "short_term": ["action 1", "action 2"],
  "long_term": ["action 1", "action 2"]
}`)
	return b.String()
}
