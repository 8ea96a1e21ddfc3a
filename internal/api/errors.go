package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slyyfoxx/foxxtalk/internal/content"
)

const msgInternal = "Internal server error"

// writeError writes a {"message": ...} error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeDetail writes a {"detail": ...} response. The settings and account
// endpoints answer with this shape on success and failure alike.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, DetailResponse{Detail: detail})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeContentError maps a content service error to a {"message"} response.
// Unexpected errors are logged and answered with a generic 500.
func writeContentError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := content.Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("api request failed", "error", err)
	}
	writeError(w, status, content.Message(err, msgInternal))
}

// writeContentDetail is writeContentError for {"detail"} endpoints.
func writeContentDetail(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := content.Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("api request failed", "error", err)
	}
	writeDetail(w, status, content.Message(err, msgInternal))
}
