package services

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/actions"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/optimizer"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type OptimizationService interface {
	Analyze(ctx context.Context, rfpID string) (*models.OptimizationAnalysis, error)
	Get(ctx context.Context, analysisID string) (*models.OptimizationAnalysis, error)
	List(ctx context.Context) ([]models.OptimizationSummary, error)
	ActionItems(ctx context.Context, analysisID string) (*models.ActionItemsResponse, error)
	SetActionItemCompleted(ctx context.Context, analysisID, itemID string, completed bool) (*models.ActionItem, error)
}

type optimizationService struct {
	docs   repository.DocumentRepository
	repo   repository.OptimizationRepository
	agent  *optimizer.Agent
	logger *utils.Logger
}

func NewOptimizationService(docs repository.DocumentRepository, repo repository.OptimizationRepository, agent *optimizer.Agent, logger *utils.Logger) OptimizationService {
	return &optimizationService{docs: docs, repo: repo, agent: agent, logger: logger}
}

// Analyze reviews an RFP and stores the analysis with its action items.
func (s *optimizationService) Analyze(ctx context.Context, rfpID string) (*models.OptimizationAnalysis, error) {
	if rfpID == "" {
		return nil, utils.NewBadRequestError("rfp_document_id is required")
	}
	rfp, err := s.docs.GetByID(ctx, models.KindRFP, rfpID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("RFP not found")
	}
	if err != nil {
		s.logger.Error("Failed to load RFP", "error", err, "rfp_id", rfpID)
		return nil, utils.NewInternalError("Failed to load RFP")
	}

	result, err := s.agent.Analyze(ctx, *rfp)
	if errors.Is(err, optimizer.ErrUnavailable) {
		return nil, utils.NewUnavailableError("RFP optimization is not configured. Set the API key and restart the service.")
	}
	if err != nil {
		s.logger.Error("RFP optimization failed", "error", err, "rfp_id", rfpID)
		return nil, utils.NewUpstreamError("RFP optimization failed", err)
	}

	items := actions.Derive(result)
	for i := range items {
		items[i].AnalysisID = result.AnalysisID
	}
	if err := s.repo.Save(ctx, &result, items); err != nil {
		s.logger.Error("Failed to save optimization analysis", "error", err, "analysis_id", result.AnalysisID)
		return nil, utils.NewInternalError("Failed to save optimization analysis")
	}

	return &result, nil
}

func (s *optimizationService) Get(ctx context.Context, analysisID string) (*models.OptimizationAnalysis, error) {
	a, err := s.repo.GetByID(ctx, analysisID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("Optimization analysis not found")
	}
	if err != nil {
		s.logger.Error("Failed to get optimization analysis", "error", err, "analysis_id", analysisID)
		return nil, utils.NewInternalError("Failed to retrieve optimization analysis")
	}
	return a, nil
}

func (s *optimizationService) List(ctx context.Context) ([]models.OptimizationSummary, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list optimization analyses", "error", err)
		return nil, utils.NewInternalError("Failed to list optimization analyses")
	}
	return list, nil
}

func (s *optimizationService) ActionItems(ctx context.Context, analysisID string) (*models.ActionItemsResponse, error) {
	if _, err := s.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	items, err := s.repo.ActionItems(ctx, analysisID)
	if err != nil {
		s.logger.Error("Failed to list action items", "error", err, "analysis_id", analysisID)
		return nil, utils.NewInternalError("Failed to list action items")
	}
	resp := actions.Summarize(analysisID, items)
	return &resp, nil
}

func (s *optimizationService) SetActionItemCompleted(ctx context.Context, analysisID, itemID string, completed bool) (*models.ActionItem, error) {
	item, err := s.repo.GetActionItem(ctx, analysisID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("Action item not found")
	}
	if err != nil {
		s.logger.Error("Failed to get action item", "error", err, "item_id", itemID)
		return nil, utils.NewInternalError("Failed to retrieve action item")
	}

	updated := actions.Toggle(*item, completed, time.Now())
	if err := s.repo.UpdateActionItem(ctx, &updated); err != nil {
		s.logger.Error("Failed to update action item", "error", err, "item_id", itemID)
		return nil, utils.NewInternalError("Failed to update action item")
	}
	return &updated, nil
}
