package optimizer

import (
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

var (
	immediateVerbs = []string{"review", "validate", "identify", "clarify"}
	shortTermVerbs = []string{"implement", "establish", "develop", "conduct"}
)

// defaultTimeline sorts priority actions by their leading verbs and fills
// any empty phase with generic steps. Each phase holds at most three items.
func defaultTimeline(actions []string, title string) models.ImplementationTimeline {
	if strings.TrimSpace(title) == "" {
		title = "this RFP"
	}

	var t models.ImplementationTimeline
	for _, a := range actions {
		lowered := strings.ToLower(a)
		switch {
		case countIndicators(lowered, immediateVerbs) > 0:
			t.Immediate = append(t.Immediate, a)
		case countIndicators(lowered, shortTermVerbs) > 0:
			t.ShortTerm = append(t.ShortTerm, a)
		default:
			t.LongTerm = append(t.LongTerm, a)
		}
	}

	if len(t.Immediate) == 0 {
		t.Immediate = []string{
			"Review and validate " + title + " structure and requirements",
			"Identify immediate gaps in project documentation",
		}
	}
	if len(t.ShortTerm) == 0 {
		t.ShortTerm = []string{
			"Implement priority recommendations for " + title,
			"Conduct stakeholder review sessions",
			"Update cost estimates and timeline projections",
		}
	}
	if len(t.LongTerm) == 0 {
		t.LongTerm = []string{
			"Establish comprehensive processes for " + title + " management",
			"Develop project tracking and reporting systems",
			"Create standardized templates and best practices",
		}
	}

	t.Immediate = capList(t.Immediate, maxTimelineItems)
	t.ShortTerm = capList(t.ShortTerm, maxTimelineItems)
	t.LongTerm = capList(t.LongTerm, maxTimelineItems)
	return t
}
