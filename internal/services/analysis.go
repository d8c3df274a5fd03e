package services

import (
	"context"
	"errors"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/actions"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/analysis"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/session"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type AnalysisService interface {
	Start(ctx context.Context, req *models.StartAnalysisRequest) (*models.StartAnalysisResponse, error)
	Status(ctx context.Context, sessionID string) (*models.SessionStatus, error)
	Result(ctx context.Context, sessionID string) (*models.AnalysisResultResponse, error)
	History(ctx context.Context, sessionID string) ([]models.ConversationEntry, error)
	ActionItems(ctx context.Context, sessionID string) (*models.ActionItemsResponse, error)
	Ask(ctx context.Context, sessionID string, req *models.QuestionRequest) (*models.QuestionResponse, error)
	Close(ctx context.Context, sessionID string) (*models.SessionStatus, error)
	Delete(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]models.SessionStatus, error)
}

type analysisService struct {
	docs    repository.DocumentRepository
	machine *session.Machine
	logger  *utils.Logger
}

func NewAnalysisService(docs repository.DocumentRepository, machine *session.Machine, logger *utils.Logger) AnalysisService {
	return &analysisService{docs: docs, machine: machine, logger: logger}
}

// sessionError maps session errors onto client-facing ones.
func (s *analysisService) sessionError(err error, sessionID string) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return utils.NewNotFoundError("Session not found")
	case errors.Is(err, session.ErrEnded):
		return utils.NewConflictError("Session has ended. Start a new analysis to ask more questions")
	case errors.Is(err, session.ErrEmptyQuestion):
		return utils.NewBadRequestError("Question is required")
	case errors.Is(err, session.ErrBackendUnavailable):
		return utils.NewUnavailableError("Generation and retrieval backends are not configured. Set the API keys and restart the service.")
	default:
		s.logger.Error("Session operation failed", "error", err, "session_id", sessionID)
		return utils.NewInternalError("Session operation failed")
	}
}

// Start loads the requested documents and runs the session through its
// comparison. With no proposal ids every stored proposal is used.
func (s *analysisService) Start(ctx context.Context, req *models.StartAnalysisRequest) (*models.StartAnalysisResponse, error) {
	var (
		proposals []models.Proposal
		err       error
	)
	if len(req.ProposalIDs) > 0 {
		proposals, err = s.docs.GetMany(ctx, models.KindProposal, uniqueIDs(req.ProposalIDs))
	} else {
		proposals, err = s.docs.List(ctx, models.KindProposal)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("One or more proposals were not found")
	}
	if err != nil {
		s.logger.Error("Failed to load proposals", "error", err)
		return nil, utils.NewInternalError("Failed to load proposals")
	}

	var rfp *models.RFPDocument
	if req.RFPDocumentID != "" {
		rfp, err = s.docs.GetByID(ctx, models.KindRFP, req.RFPDocumentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("RFP not found")
		}
		if err != nil {
			s.logger.Error("Failed to load RFP", "error", err, "rfp_id", req.RFPDocumentID)
			return nil, utils.NewInternalError("Failed to load RFP")
		}
	}

	sess, err := s.machine.Start(ctx, session.StartInput{SessionID: req.SessionID, Proposals: proposals, RFP: rfp})
	switch {
	case errors.Is(err, session.ErrNoProposals):
		return nil, utils.NewBadRequestError(sess.ErrorMessage)
	case errors.Is(err, session.ErrBackendUnavailable):
		return nil, utils.NewUnavailableError(sess.ErrorMessage)
	case errors.Is(err, session.ErrSetupFailed):
		return nil, utils.NewUpstreamError(sess.ErrorMessage, err)
	case err != nil:
		s.logger.Error("Failed to start analysis", "error", err, "session_id", sess.ID)
		return nil, utils.NewInternalError("Failed to start analysis")
	}

	return &models.StartAnalysisResponse{
		SessionID:      sess.ID,
		State:          sess.State,
		Analysis:       sess.CurrentAnalysis,
		ProposalsCount: len(sess.Proposals),
		Degraded:       sess.Degraded,
		ErrorMessage:   sess.ErrorMessage,
	}, nil
}

func (s *analysisService) Status(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	status, err := s.machine.Status(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	return &status, nil
}

// Result returns the raw comparison plus its per-proposal rows.
func (s *analysisService) Result(ctx context.Context, sessionID string) (*models.AnalysisResultResponse, error) {
	sess, err := s.machine.Get(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	if sess.CurrentAnalysis == "" && sess.StructuredAnalysis == nil {
		return nil, utils.NewNotFoundError("Analysis has not completed for this session")
	}

	results := []models.AnalysisResult{}
	if sess.StructuredAnalysis != nil {
		results = analysis.Results(*sess.StructuredAnalysis, sess.Proposals, sess.Alignments)
	}

	return &models.AnalysisResultResponse{
		SessionID:          sess.ID,
		State:              sess.State,
		Analysis:           sess.CurrentAnalysis,
		StructuredAnalysis: sess.StructuredAnalysis,
		Results:            results,
		ProposalsCount:     len(sess.Proposals),
	}, nil
}

func (s *analysisService) History(ctx context.Context, sessionID string) ([]models.ConversationEntry, error) {
	sess, err := s.machine.Get(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	return sess.ConversationHistory, nil
}

// ActionItems derives action items from the session's comparison
// recommendations. The view is computed on each call and never stored, so
// items cannot be completed.
func (s *analysisService) ActionItems(ctx context.Context, sessionID string) (*models.ActionItemsResponse, error) {
	sess, err := s.machine.Get(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	if sess.StructuredAnalysis == nil {
		return nil, utils.NewNotFoundError("Analysis has not completed for this session")
	}

	items := actions.Derive(*sess.StructuredAnalysis)
	for i := range items {
		items[i].AnalysisID = sess.ID
	}
	resp := actions.Summarize(sess.ID, items)
	return &resp, nil
}

// Ask answers a follow-up question. When the answer fails the session has
// already ended; the failure is reported as an upstream error.
func (s *analysisService) Ask(ctx context.Context, sessionID string, req *models.QuestionRequest) (*models.QuestionResponse, error) {
	out, err := s.machine.Ask(ctx, sessionID, session.AskInput{Question: req.Question, Continue: req.Continue})
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	if out.Entry == nil {
		return nil, utils.NewUpstreamError(out.Session.ErrorMessage, nil)
	}

	return &models.QuestionResponse{
		SessionID:         out.Session.ID,
		Question:          out.Entry.Question,
		Response:          out.Entry.Response,
		RelevantProposals: out.Entry.RelevantProposals,
		Timestamp:         out.Entry.Timestamp,
		State:             out.Session.State,
	}, nil
}

func (s *analysisService) Close(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	sess, err := s.machine.Close(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err, sessionID)
	}
	status := sess.Status()
	return &status, nil
}

func (s *analysisService) Delete(ctx context.Context, sessionID string) error {
	if err := s.machine.Delete(ctx, sessionID); err != nil {
		return s.sessionError(err, sessionID)
	}
	s.logger.Info("Session deleted", "session_id", sessionID)
	return nil
}

func (s *analysisService) Sessions(ctx context.Context) ([]models.SessionStatus, error) {
	sessions, err := s.machine.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list sessions", "error", err)
		return nil, utils.NewInternalError("Failed to list sessions")
	}
	out := make([]models.SessionStatus, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Status())
	}
	return out, nil
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
