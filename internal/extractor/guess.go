package extractor

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Guess holds best-effort metadata. Zero values mean unknown.
type Guess struct {
	Title          string
	Budget         float64
	TimelineMonths int
	Category       string
}

const (
	minBudget         = 1000
	maxTimelineMonths = 60
	defaultCategory   = "General"
)

// Tried in order; the first amount above minBudget wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`\$\d+k`),
	regexp.MustCompile(`budget[:\s]+\$?[\d,]+`),
	regexp.MustCompile(`cost[:\s]+\$?[\d,]+`),
}

var (
	monthsPattern   = regexp.MustCompile(`(\d+)\s*months?`)
	weeksPattern    = regexp.MustCompile(`(\d+)\s*weeks?`)
	timelinePattern = regexp.MustCompile(`timeline[:\s]+(\d+)`)
	nonAmount       = regexp.MustCompile(`[^\d.]`)
)

var categories = []struct {
	name     string
	keywords []string
}{
	{"Technology", []string{"software", "ai", "machine learning", "cloud", "api", "platform", "system"}},
	{"Marketing", []string{"marketing", "advertising", "campaign", "brand", "social media"}},
	{"Infrastructure", []string{"infrastructure", "hardware", "network", "server", "datacenter"}},
	{"Consulting", []string{"consulting", "advisory", "strategy", "analysis", "assessment"}},
	{"Training", []string{"training", "education", "workshop", "certification", "learning"}},
}

var titleCaser = cases.Title(language.English)

// GuessFields inspects extracted text and the upload filename.
func GuessFields(text, filename string) Guess {
	lowered := strings.ToLower(text)
	return Guess{
		Title:          TitleFromFilename(filename),
		Budget:         guessBudget(lowered),
		TimelineMonths: guessTimeline(lowered),
		Category:       guessCategory(lowered),
	}
}

func guessBudget(lowered string) float64 {
	for _, re := range budgetPatterns {
		for _, match := range re.FindAllString(lowered, -1) {
			amount, err := strconv.ParseFloat(nonAmount.ReplaceAllString(match, ""), 64)
			if err != nil {
				continue
			}
			if strings.HasSuffix(match, "k") {
				amount *= 1000
			}
			if amount > minBudget {
				return amount
			}
		}
	}
	return 0
}

func guessTimeline(lowered string) int {
	if m := monthsPattern.FindStringSubmatch(lowered); m != nil {
		return capMonths(atoi(m[1]))
	}
	if m := weeksPattern.FindStringSubmatch(lowered); m != nil {
		return capMonths(max(1, atoi(m[1])/4))
	}
	if m := timelinePattern.FindStringSubmatch(lowered); m != nil {
		return capMonths(atoi(m[1]))
	}
	return 0
}

func capMonths(n int) int {
	return min(n, maxTimelineMonths)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func guessCategory(lowered string) string {
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lowered, kw) {
				return c.name
			}
		}
	}
	return defaultCategory
}

// TitleFromFilename turns "acme_cloud-bid.pdf" into "Proposal: Acme Cloud Bid".
func TitleFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	words := strings.Fields(base)
	if len(words) == 0 {
		return "Proposal: Untitled"
	}
	return "Proposal: " + titleCaser.String(strings.Join(words, " "))
}
