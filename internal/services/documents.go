package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/alignment"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/normalizer"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

const listContentChars = 500

type DocumentService interface {
	Upload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	Get(ctx context.Context, kind models.DocumentKind, id string) (*models.Proposal, error)
	List(ctx context.Context, kind models.DocumentKind) ([]models.Proposal, error)
	Delete(ctx context.Context, kind models.DocumentKind, id string) error
	Alignment(ctx context.Context, rfpID, proposalID string) (*models.Alignment, error)
	Download(ctx context.Context, kind models.DocumentKind, id string) ([]byte, *models.Proposal, error)
}

type documentService struct {
	repo          repository.DocumentRepository
	optimizations repository.OptimizationRepository
	storage       storage.Storage
	logger        *utils.Logger
	metrics       *metrics.Metrics
}

// NewDocumentService wires document intake. A nil store skips raw object
// storage.
func NewDocumentService(repo repository.DocumentRepository, optimizations repository.OptimizationRepository, store storage.Storage, logger *utils.Logger, m *metrics.Metrics) DocumentService {
	return &documentService{
		repo:          repo,
		optimizations: optimizations,
		storage:       store,
		logger:        logger,
		metrics:       m,
	}
}

func kindLabel(kind models.DocumentKind) string {
	if kind == models.KindRFP {
		return "RFP"
	}
	return "Proposal"
}

func (s *documentService) Upload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	if len(req.File) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}
	kind := req.Kind
	if kind == "" {
		kind = models.KindProposal
	}

	contentType := extractor.ResolveContentType(req.ContentType, req.Filename)
	ex, err := extractor.Process(req.File, contentType, req.Filename)
	switch {
	case errors.Is(err, extractor.ErrUnsupportedType):
		s.logger.Warn("Unsupported content type", "content_type", req.ContentType, "filename", req.Filename)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported file type '%s'. Only PDF, DOCX and TXT are allowed", req.ContentType))
	case errors.Is(err, extractor.ErrNoText):
		s.logger.Warn("No text extracted from document", "filename", req.Filename)
		return nil, utils.NewBadRequestError("No text could be extracted from the document. The file may be empty, scanned or corrupted")
	case err != nil:
		s.logger.Error("Failed to extract text", "error", err, "content_type", contentType, "filename", req.Filename)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Failed to extract text from document: %v", err))
	}

	doc := normalizer.Normalize(ex, normalizer.Meta{
		Kind:        kind,
		Filename:    req.Filename,
		FileSize:    int64(len(req.File)),
		ContentType: contentType,
	})

	if s.storage != nil {
		doc.S3Key = storage.ObjectKey(kind, doc.ID, req.Filename)
		if err := s.storage.Upload(ctx, doc.S3Key, req.File, contentType); err != nil {
			s.logger.Error("Failed to upload to S3", "error", err, "s3_key", doc.S3Key)
			return nil, utils.NewInternalError("Failed to store document")
		}
	}

	if err := s.repo.Create(ctx, &doc); err != nil {
		s.logger.Error("Failed to save document to database", "error", err, "doc_id", doc.ID)
		s.deleteObject(ctx, doc.S3Key)
		return nil, utils.NewInternalError("Failed to save document metadata")
	}

	s.metrics.DocumentUploaded(string(kind))
	s.logger.Info("Document uploaded successfully",
		"id", doc.ID,
		"kind", kind,
		"filename", req.Filename,
		"content_type", contentType,
		"text_length", len(doc.Content),
		"budget", doc.Budget,
		"timeline_months", doc.TimelineMonths)

	return &models.UploadResponse{
		ID:             doc.ID,
		Kind:           kind,
		Title:          doc.Title,
		Filename:       doc.Filename,
		FileSize:       doc.FileSize,
		ContentType:    doc.ContentType,
		Budget:         doc.Budget,
		TimelineMonths: doc.TimelineMonths,
		Category:       doc.Category,
		CreatedAt:      doc.CreatedAt,
		Message:        kindLabel(kind) + " uploaded successfully.",
	}, nil
}

func (s *documentService) Get(ctx context.Context, kind models.DocumentKind, id string) (*models.Proposal, error) {
	doc, err := s.repo.GetByID(ctx, kind, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError(kindLabel(kind) + " not found")
	}
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	return doc, nil
}

// List returns every document of kind with content cut to a preview.
func (s *documentService) List(ctx context.Context, kind models.DocumentKind) ([]models.Proposal, error) {
	docs, err := s.repo.List(ctx, kind)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "kind", kind)
		return nil, utils.NewInternalError("Failed to list documents")
	}
	for i := range docs {
		docs[i].Content = utils.Truncate(docs[i].Content, listContentChars)
	}
	return docs, nil
}

// Delete removes the record, its stored object and, for an RFP, the
// optimization analyses made from it.
func (s *documentService) Delete(ctx context.Context, kind models.DocumentKind, id string) error {
	doc, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError(kindLabel(kind) + " not found")
		}
		s.logger.Error("Failed to delete document", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete document")
	}

	if kind == models.KindRFP && s.optimizations != nil {
		if err := s.optimizations.DeleteByRFP(ctx, id); err != nil {
			s.logger.Warn("Failed to delete optimization analyses", "error", err, "rfp_id", id)
		}
	}
	s.deleteObject(ctx, doc.S3Key)

	s.logger.Info("Document deleted", "id", id, "kind", kind)
	return nil
}

// Alignment scores one proposal against one RFP without starting a session.
func (s *documentService) Alignment(ctx context.Context, rfpID, proposalID string) (*models.Alignment, error) {
	rfp, err := s.Get(ctx, models.KindRFP, rfpID)
	if err != nil {
		return nil, err
	}
	proposal, err := s.Get(ctx, models.KindProposal, proposalID)
	if err != nil {
		return nil, err
	}

	a := alignment.Analyze(*rfp, *proposal)
	return &a, nil
}

// Download returns the original upload bytes.
func (s *documentService) Download(ctx context.Context, kind models.DocumentKind, id string) ([]byte, *models.Proposal, error) {
	doc, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil || doc.S3Key == "" {
		return nil, nil, utils.NewNotFoundError("Original file is not stored for this document")
	}

	data, err := s.storage.Download(ctx, doc.S3Key)
	if err != nil {
		s.logger.Error("Failed to download stored object", "error", err, "s3_key", doc.S3Key)
		return nil, nil, utils.NewInternalError("Failed to retrieve original file")
	}
	return data, doc, nil
}

func (s *documentService) deleteObject(ctx context.Context, key string) {
	if s.storage == nil || key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", "error", err, "s3_key", key)
	}
}
