package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
)

type aiAPIHandler struct {
	content *content.Service
	logger  *slog.Logger
}

func registerAIRoutes(r chi.Router, svc *content.Service, logger *slog.Logger) {
	h := &aiAPIHandler{content: svc, logger: logger}
	r.Post("/ai/generate", h.Generate)
	r.Post("/ai/generate-image", h.GenerateImage)
}

// Generate asks the configured model to draft or improve a post.
// POST /api/ai/generate
//
// @Summary      Generate post content
// @Description  prompt is one of generate_ideas, improve_content or complete_post. The reply is currentData with the model's non-empty fields merged in.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        body  body      llm.GenerateRequest  true  "Action and current draft"
// @Success      200   {object}  llm.Draft
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /ai/generate [post]
func (h *aiAPIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req llm.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft, err := h.content.Generate(r.Context(), auth.BearerToken(r), req)
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// GenerateImage creates an image from a prompt and stores it as an upload.
// POST /api/ai/generate-image
//
// @Summary      Generate an image
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        body  body      GenerateImageRequest  true  "Prompt and optional size"
// @Success      200   {object}  UploadResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /ai/generate-image [post]
func (h *aiAPIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	url, err := h.content.GenerateImage(r.Context(), auth.BearerToken(r), req.Prompt, req.Size)
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}
