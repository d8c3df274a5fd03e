package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/services"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

// DocumentHandler serves one document kind; proposals and RFPs each get
// their own instance.
type DocumentHandler struct {
	service     services.DocumentService
	kind        models.DocumentKind
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, kind models.DocumentKind, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		kind:        kind,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) tooLarge() error {
	return utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxFileSize {
		respondError(w, h.logger, h.tooLarge())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, h.logger, h.tooLarge())
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		respondError(w, h.logger, h.tooLarge())
		return
	}

	h.logger.Info("File upload attempt",
		"kind", h.kind,
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"size", len(data))

	resp, err := h.service.Upload(r.Context(), &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Kind:        h.kind,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context(), h.kind)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), h.kind, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.Delete(r.Context(), h.kind, id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"id":      id,
		"message": fmt.Sprintf("%s deleted successfully.", kindTitle(h.kind)),
	})
}

// Download streams the original upload back with its content type.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	data, doc, err := h.service.Download(r.Context(), h.kind, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write file response", "error", err, "id", doc.ID)
	}
}

// Alignment scores the proposal named in the path against this RFP.
func (h *DocumentHandler) Alignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, err := h.service.Alignment(r.Context(), vars["id"], vars["proposalId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, a)
}

func kindTitle(kind models.DocumentKind) string {
	if kind == models.KindRFP {
		return "RFP"
	}
	return "Proposal"
}
