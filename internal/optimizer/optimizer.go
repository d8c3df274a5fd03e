// Package optimizer reviews an RFP across four dimensions: timeline
// feasibility, requirements clarity, cost flexibility and total cost of
// ownership. Each dimension scores 1-10 and the overall score is their sum.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/generator"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const (
	dimensionMaxScore = 10
	overallMaxScore   = 4 * dimensionMaxScore
)

var ErrUnavailable = errors.New("optimization generator is not configured")

type Agent struct {
	generator generator.Generator
	logger    *utils.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAgent wires an agent. Retries belong to gen; wrap it with
// generator.WithRetry to get them.
func NewAgent(gen generator.Generator, logger *utils.Logger, m *metrics.Metrics) *Agent {
	return &Agent{
		generator: gen,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Analyze generates the four-dimension review for rfp. A response that is
// not the expected JSON is replaced by a heuristic review of the RFP text;
// only a generator error is returned.
func (a *Agent) Analyze(ctx context.Context, rfp models.RFPDocument) (models.OptimizationAnalysis, error) {
	if a.generator == nil {
		return models.OptimizationAnalysis{}, ErrUnavailable
	}
	start := a.now()

	raw, err := a.generator.Generate(ctx, analysisPrompt(rfp))
	if err != nil {
		return models.OptimizationAnalysis{}, fmt.Errorf("optimization failed: %w", err)
	}

	review, ok := parseReview(raw)
	if !ok {
		a.logger.Warn("Optimization output not usable, using heuristics", "rfp_id", rfp.ID)
		review = heuristicReview(raw, rfp)
	}

	result := models.OptimizationAnalysis{
		AnalysisID:          utils.GenerateID(),
		RFPDocumentID:       rfp.ID,
		AnalysisTimestamp:   start.UTC(),
		MaxScore:            overallMaxScore,
		TimelineFeasibility: review.Timeline,
		RequirementsClarity: review.Requirements,
		CostFlexibility:     review.Cost,
		TCOAnalysis:         review.TCO,
		PriorityActions:     review.PriorityActions,
		ExecutiveSummary:    review.ExecutiveSummary,
		Synthesized:         review.Synthesized,
	}
	result.OverallScore = result.TimelineFeasibility.Score +
		result.RequirementsClarity.Score +
		result.CostFlexibility.Score +
		result.TCOAnalysis.Score

	result.ImplementationTimeline = a.implementationTimeline(ctx, rfp, review.PriorityActions, review.ExecutiveSummary)
	result.ProcessingTimeSeconds = a.now().Sub(start).Seconds()

	a.metrics.OptimizationCompleted(result.Synthesized)
	a.logger.Info("RFP optimization completed", "rfp_id", rfp.ID, "analysis_id", result.AnalysisID,
		"overall_score", result.OverallScore, "synthesized", result.Synthesized)
	return result, nil
}

// implementationTimeline asks for a phased plan and falls back to sorting
// the priority actions by keyword.
func (a *Agent) implementationTimeline(ctx context.Context, rfp models.RFPDocument, actions []string, summary string) models.ImplementationTimeline {
	raw, err := a.generator.Generate(ctx, timelinePrompt(actions, summary))
	if err != nil {
		a.logger.Warn("Implementation timeline generation failed", "rfp_id", rfp.ID, "error", err)
		return defaultTimeline(actions, rfp.Title)
	}
	if t, ok := parseTimeline(raw); ok {
		return t
	}
	return defaultTimeline(actions, rfp.Title)
}
