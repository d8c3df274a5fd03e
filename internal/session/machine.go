// Package session runs analysis sessions: index the proposals, generate a
// structured comparison, then answer follow-up questions until the session
// ends. Sessions move new -> setup -> comparison -> interactive -> ended.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/generator"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/retrieval"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const (
	DefaultSearchK      = 3
	DefaultHistoryTurns = 3
)

type Config struct {
	SearchK      int
	HistoryTurns int
}

type Machine struct {
	store     Store
	generator generator.Generator
	retriever retrieval.Retriever
	logger    *utils.Logger
	metrics   *metrics.Metrics
	locks     *keyedMutex
	now       func() time.Time

	searchK      int
	historyTurns int
}

// NewMachine wires a machine. A nil generator or retriever is allowed; Start
// then ends every session with ErrBackendUnavailable.
func NewMachine(store Store, gen generator.Generator, ret retrieval.Retriever, logger *utils.Logger, m *metrics.Metrics, cfg Config) *Machine {
	if cfg.SearchK <= 0 {
		cfg.SearchK = DefaultSearchK
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultHistoryTurns
	}
	return &Machine{
		store:        store,
		generator:    gen,
		retriever:    ret,
		logger:       logger,
		metrics:      m,
		locks:        newKeyedMutex(),
		now:          time.Now,
		searchK:      cfg.SearchK,
		historyTurns: cfg.HistoryTurns,
	}
}

type StartInput struct {
	SessionID string
	Proposals []models.Proposal
	RFP       *models.RFPDocument
}

type AskInput struct {
	Question string
	// Continue, when set, replaces the session's continue flag before the
	// decision step.
	Continue *bool
}

type AskOutput struct {
	Session models.Session
	// Entry is nil when the question could not be answered.
	Entry *models.ConversationEntry
}

func NewSessionID(now time.Time) string {
	return fmt.Sprintf("session_%s_%s", now.UTC().Format("20060102_150405"), uuid.NewString()[:8])
}

// Start runs setup and comparison. The session is stored whatever the
// outcome so its status stays queryable. A failed comparison is not an
// error: the session is marked degraded and still accepts questions.
func (m *Machine) Start(ctx context.Context, in StartInput) (models.Session, error) {
	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = NewSessionID(m.now())
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	if prev, err := m.store.Get(ctx, id); err == nil {
		m.release(ctx, &prev)
	}

	now := m.now().UTC()
	s := models.Session{
		ID:                  id,
		State:               models.StateNew,
		Proposals:           append([]models.Proposal(nil), in.Proposals...),
		ConversationHistory: []models.ConversationEntry{},
		ContinueFlag:        true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if in.RFP != nil {
		rfp := *in.RFP
		s.RFP = &rfp
	}

	switch {
	case len(s.Proposals) == 0:
		return m.fail(ctx, s, "No proposals have been submitted yet. Please add at least one proposal to begin the analysis.", ErrNoProposals)
	case m.generator == nil || m.retriever == nil:
		return m.fail(ctx, s, "Generation and retrieval backends are not configured. Set the API keys and restart the service.", ErrBackendUnavailable)
	}

	s, sig, err := m.setup(ctx, s)
	if sig == stop {
		m.logger.Error("Session setup failed", "session_id", id, "error", err)
		return m.finish(ctx, s, fmt.Errorf("%w: %w", ErrSetupFailed, err))
	}

	s, _ = m.compare(ctx, s)
	s.State = models.StateInteractive
	s.UpdatedAt = m.now().UTC()

	if err := m.store.Put(ctx, s); err != nil {
		return s, err
	}

	result := "interactive"
	if s.Degraded {
		result = "degraded"
		m.logger.Warn("Comparison failed, session degraded", "session_id", id, "error", s.ErrorMessage)
	}
	m.metrics.SessionStarted(result)
	m.logger.Info("Session started", "session_id", id, "proposals", len(s.Proposals), "has_rfp", s.RFP != nil, "degraded", s.Degraded)
	return s, nil
}

func (m *Machine) fail(ctx context.Context, s models.Session, message string, cause error) (models.Session, error) {
	s.ErrorMessage = message
	s.State = models.StateEnded
	return m.finish(ctx, s, cause)
}

// finish persists a session that ended during Start.
func (m *Machine) finish(ctx context.Context, s models.Session, cause error) (models.Session, error) {
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Put(ctx, s); err != nil {
		return s, errors.Join(cause, err)
	}
	m.metrics.SessionStarted("failed")
	m.metrics.SessionEnded()
	return s, cause
}

// Ask answers a question in an interactive session. An answer failure is
// recorded on the session, which then ends; it is reported through a nil
// Entry rather than an error. Without backends the session is left as is
// and ErrBackendUnavailable is returned.
func (m *Machine) Ask(ctx context.Context, id string, in AskInput) (AskOutput, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return AskOutput{}, ErrEmptyQuestion
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return AskOutput{}, err
	}
	if s.State == models.StateEnded {
		return AskOutput{Session: s}, ErrEnded
	}
	// A session stored by an earlier process can outlive its backends.
	if m.generator == nil || m.retriever == nil {
		return AskOutput{Session: s}, ErrBackendUnavailable
	}

	if in.Continue != nil {
		s.ContinueFlag = *in.Continue
	}

	s, entry := m.interact(ctx, s, question)
	if entry == nil {
		m.logger.Error("Question failed", "session_id", id, "error", s.ErrorMessage)
		m.metrics.QuestionAsked("error")
	} else {
		m.metrics.QuestionAsked("success")
	}

	s, sig := decide(s, question)
	if sig == stop {
		m.release(ctx, &s)
		m.metrics.SessionEnded()
		m.logger.Info("Session ended", "session_id", id, "questions", len(s.ConversationHistory), "has_errors", s.ErrorMessage != "")
	}
	s.UpdatedAt = m.now().UTC()

	if err := m.store.Put(ctx, s); err != nil {
		return AskOutput{}, err
	}
	return AskOutput{Session: s, Entry: entry}, nil
}

func (m *Machine) Get(ctx context.Context, id string) (models.Session, error) {
	return m.store.Get(ctx, id)
}

func (m *Machine) Status(ctx context.Context, id string) (models.SessionStatus, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return models.SessionStatus{}, err
	}
	return s.Status(), nil
}

// Close clears the continue flag and ends the session. Closing an ended
// session is a no-op.
func (m *Machine) Close(ctx context.Context, id string) (models.Session, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if s.State == models.StateEnded {
		return s, nil
	}

	s.ContinueFlag = false
	s.State = models.StateEnded
	m.release(ctx, &s)
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Put(ctx, s); err != nil {
		return models.Session{}, err
	}
	m.metrics.SessionEnded()
	return s, nil
}

func (m *Machine) Delete(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	m.release(ctx, &s)
	return m.store.Delete(ctx, id)
}

func (m *Machine) List(ctx context.Context) ([]models.Session, error) {
	return m.store.List(ctx)
}

// release drops the session's retrieval collection. Ended sessions never
// search again.
func (m *Machine) release(ctx context.Context, s *models.Session) {
	if s.RetrievalHandle == "" || m.retriever == nil {
		return
	}
	if err := m.retriever.Drop(ctx, retrieval.Handle(s.RetrievalHandle)); err != nil && !errors.Is(err, retrieval.ErrUnknownHandle) {
		m.logger.Warn("Failed to drop retrieval collection", "session_id", s.ID, "error", err)
	}
	s.RetrievalHandle = ""
}
