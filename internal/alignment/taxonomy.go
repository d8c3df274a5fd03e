package alignment

import "strings"

type category struct {
	name     string
	keywords []string
}

// Declaration order fixes the order in which mismatches are reported.
var technicalTaxonomy = []category{
	{"ai", []string{"ai", "artificial intelligence", "machine learning", "ml", "neural network"}},
	{"cloud", []string{"cloud", "aws", "azure", "gcp", "kubernetes", "docker"}},
	{"api", []string{"api", "rest", "graphql", "microservices", "integration"}},
	{"database", []string{"database", "sql", "nosql", "mongodb", "postgresql", "mysql"}},
	{"security", []string{"security", "encryption", "authentication", "authorization", "ssl", "tls"}},
	{"mobile", []string{"mobile", "ios", "android", "react native", "flutter"}},
	{"web", []string{"web", "frontend", "backend", "react", "angular", "vue"}},
}

var scopeTaxonomy = []category{
	{"deliverables", []string{"deliverable", "delivery", "output", "result"}},
	{"phases", []string{"phase", "milestone", "stage", "iteration"}},
	{"support", []string{"support", "maintenance", "warranty", "training"}},
	{"documentation", []string{"documentation", "manual", "guide", "specification"}},
	{"testing", []string{"testing", "qa", "quality assurance", "validation"}},
}

// mentions reports whether lowered text contains any of the category keywords.
// Matching is plain substring, so "ai" also matches inside longer words.
func (c category) mentions(lowered string) bool {
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// missingCategories lists categories present in rfp but absent from proposal.
// Both arguments must already be lower-cased.
func missingCategories(taxonomy []category, rfp, proposal string) []string {
	var missing []string
	for _, c := range taxonomy {
		if c.mentions(rfp) && !c.mentions(proposal) {
			missing = append(missing, c.name)
		}
	}
	return missing
}
