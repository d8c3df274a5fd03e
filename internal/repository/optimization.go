package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// OptimizationRepository stores RFP optimization analyses with the action
// items derived from them.
type OptimizationRepository interface {
	Save(ctx context.Context, analysis *models.OptimizationAnalysis, items []models.ActionItem) error
	GetByID(ctx context.Context, id string) (*models.OptimizationAnalysis, error)
	List(ctx context.Context) ([]models.OptimizationSummary, error)
	DeleteByRFP(ctx context.Context, rfpID string) error
	ActionItems(ctx context.Context, analysisID string) ([]models.ActionItem, error)
	GetActionItem(ctx context.Context, analysisID, itemID string) (*models.ActionItem, error)
	UpdateActionItem(ctx context.Context, item *models.ActionItem) error
}

type optimizationRepository struct {
	db *sqlx.DB
}

func NewOptimizationRepository(db *sqlx.DB) OptimizationRepository {
	return &optimizationRepository{db: db}
}

type optimizationRow struct {
	ID               string    `db:"id"`
	RFPDocumentID    string    `db:"rfp_document_id"`
	OverallScore     int       `db:"overall_score"`
	MaxScore         int       `db:"max_score"`
	ExecutiveSummary string    `db:"executive_summary"`
	Synthesized      bool      `db:"synthesized"`
	Payload          string    `db:"payload"`
	CreatedAt        time.Time `db:"created_at"`
}

const actionItemColumns = `id, analysis_id, title, description, priority, dimension,
	completed, position, created_at, completed_at`

// Save writes the analysis and its action items in one transaction.
func (r *optimizationRepository) Save(ctx context.Context, analysis *models.OptimizationAnalysis, items []models.ActionItem) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis %s: %w", analysis.AnalysisID, err)
	}

	row := optimizationRow{
		ID:               analysis.AnalysisID,
		RFPDocumentID:    analysis.RFPDocumentID,
		OverallScore:     analysis.OverallScore,
		MaxScore:         analysis.MaxScore,
		ExecutiveSummary: analysis.ExecutiveSummary,
		Synthesized:      analysis.Synthesized,
		Payload:          string(payload),
		CreatedAt:        analysis.AnalysisTimestamp,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO optimization_analyses (id, rfp_document_id, overall_score, max_score,
			executive_summary, synthesized, payload, created_at)
		VALUES (:id, :rfp_document_id, :overall_score, :max_score,
			:executive_summary, :synthesized, :payload, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to insert analysis %s: %w", analysis.AnalysisID, err)
	}

	query = `
		INSERT INTO action_items (` + actionItemColumns + `)
		VALUES (:id, :analysis_id, :title, :description, :priority, :dimension,
			:completed, :position, :created_at, :completed_at)
	`
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
			return fmt.Errorf("failed to insert action item %s: %w", items[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis %s: %w", analysis.AnalysisID, err)
	}
	return nil
}

func (r *optimizationRepository) GetByID(ctx context.Context, id string) (*models.OptimizationAnalysis, error) {
	var row optimizationRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM optimization_analyses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}

	var analysis models.OptimizationAnalysis
	if err := json.Unmarshal([]byte(row.Payload), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	return &analysis, nil
}

// List returns analysis summaries, newest first.
func (r *optimizationRepository) List(ctx context.Context) ([]models.OptimizationSummary, error) {
	out := []models.OptimizationSummary{}
	query := `
		SELECT id, rfp_document_id, overall_score, max_score, executive_summary, synthesized, created_at
		FROM optimization_analyses
		ORDER BY created_at DESC, id
	`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}

// DeleteByRFP removes every analysis of an RFP and their action items.
func (r *optimizationRepository) DeleteByRFP(ctx context.Context, rfpID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM action_items
		WHERE analysis_id IN (SELECT id FROM optimization_analyses WHERE rfp_document_id = ?)
	`, rfpID); err != nil {
		return fmt.Errorf("failed to delete action items for rfp %s: %w", rfpID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM optimization_analyses WHERE rfp_document_id = ?`, rfpID); err != nil {
		return fmt.Errorf("failed to delete analyses for rfp %s: %w", rfpID, err)
	}
	return tx.Commit()
}

func (r *optimizationRepository) ActionItems(ctx context.Context, analysisID string) ([]models.ActionItem, error) {
	items := []models.ActionItem{}
	query := `SELECT ` + actionItemColumns + ` FROM action_items WHERE analysis_id = ? ORDER BY position`
	if err := r.db.SelectContext(ctx, &items, query, analysisID); err != nil {
		return nil, fmt.Errorf("failed to list action items for %s: %w", analysisID, err)
	}
	return items, nil
}

func (r *optimizationRepository) GetActionItem(ctx context.Context, analysisID, itemID string) (*models.ActionItem, error) {
	var item models.ActionItem
	query := `SELECT ` + actionItemColumns + ` FROM action_items WHERE id = ? AND analysis_id = ?`
	err := r.db.GetContext(ctx, &item, query, itemID, analysisID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load action item %s: %w", itemID, err)
	}
	return &item, nil
}

// UpdateActionItem persists the completion state of item.
func (r *optimizationRepository) UpdateActionItem(ctx context.Context, item *models.ActionItem) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE action_items
		SET completed = :completed, completed_at = :completed_at
		WHERE id = :id AND analysis_id = :analysis_id
	`, item)
	if err != nil {
		return fmt.Errorf("failed to update action item %s: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update action item %s: %w", item.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
