package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("record not found")

// DocumentRepository stores proposals and RFPs in one table, told apart by
// kind.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Proposal) error
	GetByID(ctx context.Context, kind models.DocumentKind, id string) (*models.Proposal, error)
	GetMany(ctx context.Context, kind models.DocumentKind, ids []string) ([]models.Proposal, error)
	List(ctx context.Context, kind models.DocumentKind) ([]models.Proposal, error)
	Delete(ctx context.Context, kind models.DocumentKind, id string) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, kind, title, content, budget, timeline_months, category,
	filename, file_size, content_type, s3_key, created_at`

func (r *documentRepository) Create(ctx context.Context, doc *models.Proposal) error {
	query := `
		INSERT INTO documents (id, kind, title, content, budget, timeline_months, category,
			filename, file_size, content_type, s3_key, created_at)
		VALUES (:id, :kind, :title, :content, :budget, :timeline_months, :category,
			:filename, :file_size, :content_type, :s3_key, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, kind models.DocumentKind, id string) (*models.Proposal, error) {
	var doc models.Proposal

	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ? AND kind = ?`

	err := r.db.GetContext(ctx, &doc, query, id, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	return &doc, nil
}

// GetMany returns the documents with the given ids in the order the ids
// were given. Unknown ids are an ErrNotFound.
func (r *documentRepository) GetMany(ctx context.Context, kind models.DocumentKind, ids []string) ([]models.Proposal, error) {
	if len(ids) == 0 {
		return []models.Proposal{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+documentColumns+` FROM documents WHERE kind = ? AND id IN (?)`, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build document query: %w", err)
	}

	var docs []models.Proposal
	if err := r.db.SelectContext(ctx, &docs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	byID := make(map[string]models.Proposal, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]models.Proposal, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		out = append(out, d)
	}
	return out, nil
}

// List returns every document of kind, oldest first.
func (r *documentRepository) List(ctx context.Context, kind models.DocumentKind) ([]models.Proposal, error) {
	docs := []models.Proposal{}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE kind = ? ORDER BY created_at, id`

	if err := r.db.SelectContext(ctx, &docs, query, kind); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, kind models.DocumentKind, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND kind = ?`, id, kind)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
