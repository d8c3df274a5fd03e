package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/services"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type OptimizationHandler struct {
	service services.OptimizationService
	logger  *utils.Logger
}

func NewOptimizationHandler(service services.OptimizationService, logger *utils.Logger) *OptimizationHandler {
	return &OptimizationHandler{service: service, logger: logger}
}

func (h *OptimizationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.OptimizationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req.RFPDocumentID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, analysis)
}

func (h *OptimizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.Get(r.Context(), mux.Vars(r)["analysisId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, analysis)
}

func (h *OptimizationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, list)
}

func (h *OptimizationHandler) ActionItems(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ActionItems(r.Context(), mux.Vars(r)["analysisId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *OptimizationHandler) UpdateActionItem(w http.ResponseWriter, r *http.Request) {
	var update models.ActionItemUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, h.logger, err)
		return
	}

	vars := mux.Vars(r)
	item, err := h.service.SetActionItemCompleted(r.Context(), vars["analysisId"], vars["itemId"], update.Completed)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, item)
}
