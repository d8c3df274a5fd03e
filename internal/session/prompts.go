package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/retrieval"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const (
	proposalExcerptChars = 500
	rfpExcerptChars      = 1500
	analysisExcerptChars = 2000
	contextExcerptChars  = 1500
)

const comparisonSchema = `{
  "proposals": [
    {
      "proposal_id": "proposal_id_here",
      "vendor_name": "extracted_vendor_name",
      "overall_score": 85,
      "budget_score": 80,
      "technical_score": 90,
      "timeline_score": 85,
      "strengths": ["Specific strength 1", "Specific strength 2", "Specific strength 3"],
      "concerns": ["Specific concern 1", "Specific concern 2"],
      "risk_assessment": "Detailed risk analysis",
      "strategic_alignment": "How well this aligns with strategic goals",
      "budget_analysis": "Detailed budget evaluation",
      "timeline_analysis": "Timeline feasibility assessment",
      "contact_info": {"email": "extracted_or_estimated_email", "phone": "extracted_or_estimated_phone"}
    }
  ],
  "executive_summary": "Overall comparison summary",
  "recommendations": [
    {"rank": 1, "proposal_id": "best_proposal_id", "reasoning": "Why this is ranked first"}
  ]
}`

func proposalSummary(p models.Proposal) string {
	return fmt.Sprintf("Proposal ID: %s\nTitle: %s\nBudget: %s\nTimeline: %d months\nCategory: %s\nDescription: %s",
		p.ID, p.Title, utils.FormatMoney(p.Budget), p.TimelineMonths, p.Category,
		utils.Truncate(p.Content, proposalExcerptChars))
}

// comparisonPrompt asks for the structured comparison. With an RFP the
// proposals are judged against it and the computed alignments are included;
// otherwise against general best practice.
func comparisonPrompt(proposals []models.Proposal, rfp *models.RFPDocument, alignments map[string]models.Alignment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert business analyst. Please provide a comprehensive comparison of the following %d proposals.\n\n", len(proposals))

	if rfp != nil {
		fmt.Fprintf(&b, "Evaluate every proposal against this Request for Proposal:\nRFP Title: %s\nRFP Budget: %s\nRFP Timeline: %d months\nRFP Requirements: %s\n\n",
			rfp.Title, utils.FormatMoney(rfp.Budget), rfp.TimelineMonths, utils.Truncate(rfp.Content, rfpExcerptChars))
	} else {
		b.WriteString("No RFP was provided. Evaluate the proposals against industry best practices for scope, pricing and delivery.\n\n")
	}

	b.WriteString("For EACH proposal, provide a detailed analysis in the following JSON format:\n\n")
	b.WriteString(comparisonSchema)
	b.WriteString("\n\nProposals to analyze:\n")

	summaries := make([]string, 0, len(proposals))
	for _, p := range proposals {
		s := proposalSummary(p)
		if a, ok := alignments[p.ID]; ok {
			s += fmt.Sprintf("\nRFP Alignment: overall %d/100 (budget %d, timeline %d, technical %d, scope %d). %s",
				a.Overall, a.Budget, a.Timeline, a.Technical, a.Scope, a.Summary)
			for _, m := range a.Mismatches {
				s += fmt.Sprintf("\n- [%s/%s] %s", m.Type, m.Severity, m.Message)
			}
		}
		summaries = append(summaries, s)
	}
	b.WriteString(strings.Join(summaries, "\n\n"))

	b.WriteString(`

IMPORTANT:
- Scores should be 0-100 based on realistic assessment
- Extract actual vendor names from proposal titles/content
- Provide specific, actionable strengths and concerns
- If contact info isn't available, provide realistic estimates
- Ensure JSON is valid and complete`)
	return b.String()
}

// questionPrompt combines the question with retrieved context, an excerpt
// of the comparison and the most recent turns.
func questionPrompt(s models.Session, question string, docs []retrieval.Document, turns int) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant helping evaluate vendor proposals.\n\n")

	b.WriteString("ANALYSIS SO FAR:\n")
	b.WriteString(utils.Truncate(analysisText(s), analysisExcerptChars))
	b.WriteString("\n\n")

	var total float64
	b.WriteString("ALL PROPOSALS:\n")
	for _, p := range s.Proposals {
		total += p.Budget
		fmt.Fprintf(&b, "- %s (id %s): budget %s, timeline %d months, category %s\n",
			p.Title, p.ID, utils.FormatMoney(p.Budget), p.TimelineMonths, p.Category)
	}
	fmt.Fprintf(&b, "Combined budget of all proposals: %s\n\n", utils.FormatMoney(total))

	if s.RFP != nil {
		fmt.Fprintf(&b, "RFP: %s, budget %s, timeline %d months\n\n", s.RFP.Title, utils.FormatMoney(s.RFP.Budget), s.RFP.TimelineMonths)
	}

	b.WriteString("RELEVANT EXCERPTS:\n")
	if len(docs) == 0 {
		b.WriteString("(none)\n")
	}
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, utils.Truncate(d.Text, contextExcerptChars))
	}
	b.WriteString("\n")

	history := s.ConversationHistory
	if len(history) > turns {
		history = history[len(history)-turns:]
	}
	if len(history) > 0 {
		b.WriteString("CONVERSATION HISTORY:\n")
		for _, e := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", e.Question, e.Response)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "USER QUESTION: %s\n\n", question)
	b.WriteString("Provide a helpful, concise response about the proposal analysis, comparisons, budget allocation, or any aspect of the evaluation. " +
		"ONLY use data present in the proposals, analysis or context above; do not invent figures. " +
		"Respond conversationally and DO NOT include JSON formatting in your response.")
	return b.String()
}

// analysisText prefers the structured analysis, falling back to raw text.
func analysisText(s models.Session) string {
	if s.StructuredAnalysis != nil {
		if raw, err := json.Marshal(s.StructuredAnalysis); err == nil {
			return string(raw)
		}
	}
	return s.CurrentAnalysis
}
