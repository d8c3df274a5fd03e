package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

// Defaults for fields the generator left out.
const (
	defaultOverallScore   = 85
	defaultBudgetScore    = 80
	defaultTechnicalScore = 90
	defaultTimelineScore  = 85
	defaultVendorName     = "Unknown Vendor"
	defaultContactEmail   = "contact@vendor.com"
	defaultContactPhone   = "+1 (555) 123-4567"
)

// flexInt accepts JSON integers, floats and numeric strings. Anything else
// leaves it unset.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch n := v.(type) {
	case float64:
		f.value, f.set = int(math.Trunc(n)), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(n, "%")), 64); err == nil {
			f.value, f.set = int(math.Trunc(parsed)), true
		}
	}
	return nil
}

func (f flexInt) or(def int) int {
	if !f.set {
		return def
	}
	return f.value
}

type wireAnalysis struct {
	Proposals        []wireProposal       `json:"proposals"`
	ExecutiveSummary string               `json:"executive_summary"`
	Recommendations  []wireRecommendation `json:"recommendations"`
}

type wireProposal struct {
	ProposalID         string   `json:"proposal_id"`
	VendorName         string   `json:"vendor_name"`
	OverallScore       flexInt  `json:"overall_score"`
	BudgetScore        flexInt  `json:"budget_score"`
	TechnicalScore     flexInt  `json:"technical_score"`
	TimelineScore      flexInt  `json:"timeline_score"`
	Strengths          []string `json:"strengths"`
	Concerns           []string `json:"concerns"`
	RiskAssessment     string   `json:"risk_assessment"`
	StrategicAlignment string   `json:"strategic_alignment"`
	BudgetAnalysis     string   `json:"budget_analysis"`
	TimelineAnalysis   string   `json:"timeline_analysis"`
	ContactInfo        struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact_info"`
}

type wireRecommendation struct {
	Rank       flexInt `json:"rank"`
	ProposalID string  `json:"proposal_id"`
	Reasoning  string  `json:"reasoning"`
}

// ExtractObject returns the span from the first '{' to the last '}' of raw,
// which also discards surrounding prose and markdown code fences.
func ExtractObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Decode validates generator output against the comparison schema. The
// object must carry a "proposals" list; missing scalar fields take defaults.
func Decode(raw string) Outcome {
	obj, ok := ExtractObject(raw)
	if !ok {
		return RecoveryNeeded{Reason: "no JSON object in generator output"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &top); err != nil {
		return RecoveryNeeded{Reason: "invalid JSON: " + err.Error()}
	}
	list, ok := top["proposals"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(list), []byte("[")) {
		return RecoveryNeeded{Reason: `missing "proposals" list`}
	}

	var w wireAnalysis
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return RecoveryNeeded{Reason: "schema mismatch: " + err.Error()}
	}
	return Parsed{Analysis: w.toModel()}
}

func (w wireAnalysis) toModel() models.ComparisonAnalysis {
	out := models.ComparisonAnalysis{
		Proposals:        make([]models.ProposalAnalysis, 0, len(w.Proposals)),
		ExecutiveSummary: w.ExecutiveSummary,
		Recommendations:  make([]models.Recommendation, 0, len(w.Recommendations)),
	}

	for _, p := range w.Proposals {
		vendor := strings.TrimSpace(p.VendorName)
		if vendor == "" {
			vendor = defaultVendorName
		}
		out.Proposals = append(out.Proposals, models.ProposalAnalysis{
			ProposalID:         p.ProposalID,
			VendorName:         vendor,
			OverallScore:       p.OverallScore.or(defaultOverallScore),
			BudgetScore:        p.BudgetScore.or(defaultBudgetScore),
			TechnicalScore:     p.TechnicalScore.or(defaultTechnicalScore),
			TimelineScore:      p.TimelineScore.or(defaultTimelineScore),
			Strengths:          nonNil(p.Strengths),
			Concerns:           nonNil(p.Concerns),
			RiskAssessment:     p.RiskAssessment,
			StrategicAlignment: p.StrategicAlignment,
			BudgetAnalysis:     p.BudgetAnalysis,
			TimelineAnalysis:   p.TimelineAnalysis,
			ContactInfo: models.ContactInfo{
				Email: orDefault(p.ContactInfo.Email, defaultContactEmail),
				Phone: orDefault(p.ContactInfo.Phone, defaultContactPhone),
			},
		})
	}

	for i, r := range w.Recommendations {
		out.Recommendations = append(out.Recommendations, models.Recommendation{
			Rank:       r.Rank.or(i + 1),
			ProposalID: r.ProposalID,
			Reasoning:  r.Reasoning,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
