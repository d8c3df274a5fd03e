package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/middleware"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/services"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

type Services struct {
	Documents    services.DocumentService
	Analysis     services.AnalysisService
	Optimization services.OptimizationService
}

type Options struct {
	MaxFileSize    int64
	AllowedOrigins []string
}

func NewRouter(svc Services, opts Options, logger *utils.Logger, m *metrics.Metrics) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Logger(logger, m))
	r.Use(middleware.Recovery(logger))

	proposals := handlers.NewDocumentHandler(svc.Documents, models.KindProposal, opts.MaxFileSize, logger)
	rfps := handlers.NewDocumentHandler(svc.Documents, models.KindRFP, opts.MaxFileSize, logger)
	analysis := handlers.NewAnalysisHandler(svc.Analysis, logger)
	optimization := handlers.NewOptimizationHandler(svc.Optimization, logger)

	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/proposals/upload", proposals.Upload).Methods(http.MethodPost)
	api.HandleFunc("/proposals", proposals.List).Methods(http.MethodGet)
	api.HandleFunc("/proposals/{id}", proposals.Get).Methods(http.MethodGet)
	api.HandleFunc("/proposals/{id}", proposals.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/proposals/{id}/file", proposals.Download).Methods(http.MethodGet)

	api.HandleFunc("/rfps/upload", rfps.Upload).Methods(http.MethodPost)
	api.HandleFunc("/rfps", rfps.List).Methods(http.MethodGet)
	api.HandleFunc("/rfps/{id}", rfps.Get).Methods(http.MethodGet)
	api.HandleFunc("/rfps/{id}", rfps.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/rfps/{id}/file", rfps.Download).Methods(http.MethodGet)
	api.HandleFunc("/rfps/{id}/alignment/{proposalId}", rfps.Alignment).Methods(http.MethodPost)

	// /analysis/sessions is registered before /analysis/{sessionId}.
	api.HandleFunc("/analysis/start", analysis.Start).Methods(http.MethodPost)
	api.HandleFunc("/analysis/sessions", analysis.Sessions).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{sessionId}/status", analysis.Status).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{sessionId}/result", analysis.Result).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{sessionId}/history", analysis.History).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{sessionId}/action-items", analysis.ActionItems).Methods(http.MethodGet)
	api.HandleFunc("/analysis/{sessionId}/question", analysis.Ask).Methods(http.MethodPost)
	api.HandleFunc("/analysis/{sessionId}/close", analysis.Close).Methods(http.MethodPost)
	api.HandleFunc("/analysis/{sessionId}", analysis.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/optimization/analyze", optimization.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/optimization", optimization.List).Methods(http.MethodGet)
	api.HandleFunc("/optimization/{analysisId}", optimization.Get).Methods(http.MethodGet)
	api.HandleFunc("/optimization/{analysisId}/action-items", optimization.ActionItems).Methods(http.MethodGet)
	api.HandleFunc("/optimization/{analysisId}/action-items/{itemId}", optimization.UpdateActionItem).Methods(http.MethodPut)

	return middleware.CORS(opts.AllowedOrigins)(r)
}
