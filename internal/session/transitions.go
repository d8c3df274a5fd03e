package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/alignment"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/analysis"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/retrieval"
)

// signal tells the caller where a transition leaves the session.
type signal int

const (
	advance signal = iota
	stop
)

const comparisonPlaceholder = "Analysis could not be completed due to an error."

var exitKeywords = []string{"exit", "quit", "end", "stop", "bye", "goodbye"}

// Every transition receives its own copy of the session and returns the
// next value; the caller decides what to persist.

func (m *Machine) setup(ctx context.Context, s models.Session) (models.Session, signal, error) {
	s = s.Clone()
	s.State = models.StateSetup

	h, err := m.retriever.Index(ctx, s.ID, documents(s.Proposals))
	if err != nil {
		s.ErrorMessage = "Setup failed: " + err.Error()
		s.State = models.StateEnded
		return s, stop, err
	}

	s.RetrievalHandle = string(h)
	s.ErrorMessage = ""
	return s, advance, nil
}

func (m *Machine) compare(ctx context.Context, s models.Session) (models.Session, signal) {
	s = s.Clone()
	s.State = models.StateComparison

	if s.RFP != nil {
		s.Alignments = alignAll(*s.RFP, s.Proposals)
	}

	raw, err := m.generator.Generate(ctx, comparisonPrompt(s.Proposals, s.RFP, s.Alignments))
	if err != nil {
		synthesized := analysis.Synthesize(s.Proposals)
		s.ErrorMessage = "Comparison failed: " + err.Error()
		s.CurrentAnalysis = comparisonPlaceholder
		s.StructuredAnalysis = &synthesized
		s.Degraded = true
		return s, advance
	}

	s.CurrentAnalysis = raw
	var structured models.ComparisonAnalysis
	switch outcome := analysis.Decode(raw).(type) {
	case analysis.Parsed:
		structured = outcome.Analysis
	case analysis.RecoveryNeeded:
		m.logger.Warn("Comparison output not usable, synthesizing", "session_id", s.ID, "reason", outcome.Reason)
		m.metrics.ParseRecovered()
		structured = analysis.Synthesize(s.Proposals)
	}
	s.StructuredAnalysis = &structured
	s.ErrorMessage = ""
	return s, advance
}

// alignAll scores every proposal against the RFP. Scoring is pure CPU
// work over in-memory text.
func alignAll(rfp models.RFPDocument, proposals []models.Proposal) map[string]models.Alignment {
	out := make(map[string]models.Alignment, len(proposals))
	for _, p := range proposals {
		out[p.ID] = alignment.Analyze(rfp, p)
	}
	return out
}

// interact answers one question. On failure the error is recorded on the
// session and no history entry is appended.
func (m *Machine) interact(ctx context.Context, s models.Session, question string) (models.Session, *models.ConversationEntry) {
	s = s.Clone()

	docs, handle, err := m.search(ctx, s, question)
	if err != nil {
		s.ErrorMessage = "Question processing failed: " + err.Error()
		return s, nil
	}
	s.RetrievalHandle = string(handle)

	response, err := m.generator.Generate(ctx, questionPrompt(s, question, docs, m.historyTurns))
	if err != nil {
		s.ErrorMessage = "Question processing failed: " + err.Error()
		return s, nil
	}

	relevant := make([]string, 0, len(docs))
	for _, d := range docs {
		relevant = append(relevant, d.Metadata["title"])
	}

	entry := models.ConversationEntry{
		Timestamp:         m.now().UTC(),
		Question:          question,
		Response:          response,
		RelevantProposals: relevant,
	}
	s.ConversationHistory = append(s.ConversationHistory, entry)
	s.ErrorMessage = ""
	return s, &entry
}

// search queries the session's collection, rebuilding it once if the index
// no longer knows the handle.
func (m *Machine) search(ctx context.Context, s models.Session, question string) ([]retrieval.Document, retrieval.Handle, error) {
	h := retrieval.Handle(s.RetrievalHandle)
	if h != "" {
		docs, err := m.retriever.Search(ctx, h, question, m.searchK)
		if err == nil {
			return docs, h, nil
		}
		if !errors.Is(err, retrieval.ErrUnknownHandle) {
			return nil, h, err
		}
	}

	m.logger.Info("Rebuilding retrieval index", "session_id", s.ID)
	h, err := m.retriever.Index(ctx, s.ID, documents(s.Proposals))
	if err != nil {
		return nil, "", fmt.Errorf("reindex: %w", err)
	}
	docs, err := m.retriever.Search(ctx, h, question, m.searchK)
	return docs, h, err
}

// decide runs after every question and ends the session on an error, a
// cleared continue flag, or an exit keyword anywhere in the question.
func decide(s models.Session, question string) (models.Session, signal) {
	if s.ErrorMessage != "" || !s.ContinueFlag || containsExitKeyword(question) {
		s.State = models.StateEnded
		return s, stop
	}
	s.State = models.StateInteractive
	return s, advance
}

func containsExitKeyword(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range exitKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func documents(proposals []models.Proposal) []retrieval.Document {
	docs := make([]retrieval.Document, 0, len(proposals))
	for _, p := range proposals {
		docs = append(docs, retrieval.Document{
			Text: fmt.Sprintf("Title: %s\n\nContent: %s", p.Title, p.Content),
			Metadata: map[string]string{
				"id":              p.ID,
				"title":           p.Title,
				"budget":          strconv.FormatFloat(p.Budget, 'f', -1, 64),
				"timeline_months": strconv.Itoa(p.TimelineMonths),
				"category":        p.Category,
			},
		})
	}
	return docs
}
