package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Content *content.Service
	Auth    *auth.Service
	// LoginLimiter throttles /auth/login; nil disables it.
	LoginLimiter *LoginLimiter
	// MaxUploadBytes caps the multipart body of /upload/image.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewAPIRouter creates a chi sub-router for /api. Reads are public; write
// handlers pass the caller's bearer token to the content service, which
// authorizes it.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(jsonContentType)

	registerAuthRoutes(r, deps)
	registerPostRoutes(r, deps.Content, deps.Logger)
	registerSettingsRoutes(r, deps.Content, deps.Logger)
	registerUploadRoutes(r, deps.Content, deps.MaxUploadBytes, deps.Logger)
	registerAIRoutes(r, deps.Content, deps.Logger)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
