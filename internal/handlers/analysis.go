package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/services"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type AnalysisHandler struct {
	service services.AnalysisService
	logger  *utils.Logger
}

func NewAnalysisHandler(service services.AnalysisService, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, logger: logger}
}

func (h *AnalysisHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp, err := h.service.Start(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnalysisHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.Sessions(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *AnalysisHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, status)
}

func (h *AnalysisHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	history, err := h.service.History(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"session_id":           id,
		"conversation_history": history,
		"total_questions":      len(history),
	})
}

func (h *AnalysisHandler) ActionItems(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ActionItems(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnalysisHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp, err := h.service.Ask(r.Context(), mux.Vars(r)["sessionId"], &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnalysisHandler) Close(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Close(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, status)
}

func (h *AnalysisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"session_id": id,
		"message":    "Session deleted successfully.",
	})
}
