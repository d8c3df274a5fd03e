package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

var sampleProposals = []models.Proposal{
	{ID: "p1", Title: "Proposal: Acme Corp", Budget: 120000, TimelineMonths: 6, Filename: "acme.pdf"},
	{ID: "p2", Title: "", Budget: 0, TimelineMonths: 9},
	{ID: "p3", Title: "Globex", Budget: 95000, TimelineMonths: 4},
}

const validJSON = `Here is the analysis:
` + "```json" + `
{
  "proposals": [
    {
      "proposal_id": "p1",
      "vendor_name": "Acme",
      "overall_score": 88,
      "budget_score": 81.7,
      "technical_score": "92",
      "timeline_score": null,
      "strengths": ["Fast"],
      "contact_info": {"email": "sales@acme.test"}
    },
    {"proposal_id": "ghost", "vendor_name": ""}
  ],
  "executive_summary": "Acme leads",
  "recommendations": [{"rank": 1, "proposal_id": "p1", "reasoning": "Cheapest"}, {"proposal_id": "ghost"}]
}
` + "```"

func TestDecode_Valid(t *testing.T) {
	outcome := Decode(validJSON)

	parsed, ok := outcome.(Parsed)
	require.True(t, ok, "expected Parsed, got %#v", outcome)

	a := parsed.Analysis
	require.Len(t, a.Proposals, 2)
	assert.False(t, a.Synthesized)
	assert.Equal(t, "Acme leads", a.ExecutiveSummary)

	acme := a.Proposals[0]
	assert.Equal(t, 88, acme.OverallScore)
	assert.Equal(t, 81, acme.BudgetScore)
	assert.Equal(t, 92, acme.TechnicalScore)
	assert.Equal(t, defaultTimelineScore, acme.TimelineScore)
	assert.Equal(t, []string{"Fast"}, acme.Strengths)
	assert.Equal(t, []string{}, acme.Concerns)
	assert.Equal(t, "sales@acme.test", acme.ContactInfo.Email)
	assert.Equal(t, defaultContactPhone, acme.ContactInfo.Phone)

	assert.Equal(t, defaultVendorName, a.Proposals[1].VendorName)

	require.Len(t, a.Recommendations, 2)
	assert.Equal(t, 2, a.Recommendations[1].Rank)
}

func TestDecode_RecoveryNeeded(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"empty", ""},
		{"truncated", `{"proposals": [{"proposal_id": "p1"`},
		{"missing key", `{"executive_summary": "x"}`},
		{"proposals not a list", `{"proposals": {"p1": {}}}`},
		{"wrong field type", `{"proposals": [{"strengths": "one"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Decode(tt.raw)
			rec, ok := outcome.(RecoveryNeeded)
			require.True(t, ok, "expected RecoveryNeeded, got %#v", outcome)
			assert.NotEmpty(t, rec.Reason)
		})
	}
}

func TestParse_LengthMatchesSource(t *testing.T) {
	valid := Parse(validJSON, sampleProposals)
	assert.Len(t, valid.Proposals, 2)

	fallback := Parse("not json", sampleProposals)
	assert.Len(t, fallback.Proposals, len(sampleProposals))
	assert.True(t, fallback.Synthesized)
}

func TestSynthesize(t *testing.T) {
	a := Synthesize(sampleProposals)

	require.Len(t, a.Proposals, 3)
	assert.True(t, a.Synthesized)
	assert.Equal(t, synthesizedSummary, a.ExecutiveSummary)

	first := a.Proposals[0]
	assert.Equal(t, "Acme Corp", first.VendorName)
	assert.Equal(t, 85, first.OverallScore)
	assert.Equal(t, 80, first.BudgetScore)
	assert.Equal(t, 90, first.TechnicalScore)
	assert.Equal(t, 85, first.TimelineScore)
	assert.Equal(t, "Budget of $120,000 appears competitive for the scope", first.BudgetAnalysis)
	assert.Equal(t, "Proposed timeline of 6 months is feasible", first.TimelineAnalysis)

	second := a.Proposals[1]
	assert.Equal(t, "Vendor 2", second.VendorName)
	assert.Equal(t, 88, second.OverallScore)
	assert.Equal(t, 83, second.BudgetScore)
	assert.Equal(t, 93, second.TechnicalScore)

	assert.Equal(t, "Globex", a.Proposals[2].VendorName)
	assert.Equal(t, 91, a.Proposals[2].OverallScore)

	require.Len(t, a.Recommendations, 1)
	assert.Equal(t, models.Recommendation{Rank: 1, ProposalID: "p1", Reasoning: synthesizedReasoning}, a.Recommendations[0])
}

func TestSynthesize_ScoreFormulaWraps(t *testing.T) {
	proposals := make([]models.Proposal, 6)
	a := Synthesize(proposals)

	// i=5 gives base 85 + 15%15 = 85.
	assert.Equal(t, 85, a.Proposals[5].OverallScore)
	assert.Equal(t, 97, a.Proposals[4].OverallScore)
	assert.Equal(t, 100, a.Proposals[4].TechnicalScore)
}

func TestSynthesize_Empty(t *testing.T) {
	a := Synthesize(nil)

	assert.Empty(t, a.Proposals)
	require.Len(t, a.Recommendations, 1)
	assert.Equal(t, "", a.Recommendations[0].ProposalID)
}

func TestResults(t *testing.T) {
	parsed := Parse(validJSON, sampleProposals)
	alignments := map[string]models.Alignment{"p1": {Overall: 81}}

	rows := Results(parsed, sampleProposals, alignments)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "p1", row.ID)
	assert.Equal(t, "Acme", row.Vendor)
	assert.Equal(t, "acme.pdf", row.FileName)
	assert.Equal(t, "$120,000", row.ProposedBudget)
	assert.Equal(t, "6 months", row.Timeline)
	require.NotNil(t, row.RFPAlignment)
	assert.Equal(t, 81, row.RFPAlignment.Overall)
}

func TestResults_Defaults(t *testing.T) {
	rows := Results(Synthesize(sampleProposals), sampleProposals, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, "$TBD", rows[1].ProposedBudget)
	assert.Equal(t, "Unknown File", rows[1].FileName)
	assert.Nil(t, rows[1].RFPAlignment)
}

func TestExtractObject(t *testing.T) {
	obj, ok := ExtractObject("prefix {\"a\": {\"b\": 1}} suffix")
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, obj)

	_, ok = ExtractObject("} backwards {")
	assert.False(t, ok)
}
