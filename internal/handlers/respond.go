package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}. Errors that are not an AppError
// never leak their text to the client.
func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request error", "status", status, "error", err)
	} else {
		logger.Warn("Request error", "status", status, "error", message)
	}

	respondJSON(w, logger, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst unchanged.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.NewBadRequestError("Invalid JSON body")
	}
	return nil
}
