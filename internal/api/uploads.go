package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
)

// multipartOverhead is allowed on top of the image size for form boundaries
// and headers.
const multipartOverhead = 64 << 10

type uploadAPIHandler struct {
	content  *content.Service
	maxBytes int64
	logger   *slog.Logger
}

func registerUploadRoutes(r chi.Router, svc *content.Service, maxBytes int64, logger *slog.Logger) {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	h := &uploadAPIHandler{content: svc, maxBytes: maxBytes, logger: logger}
	r.Post("/upload/image", h.Image)
}

// Image stores an uploaded image and returns its public URL.
// POST /api/upload/image
//
// @Summary      Upload an image
// @Description  Accepts JPEG, PNG, GIF or WebP in the multipart field "image". Large images are scaled down.
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  UploadResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      413    {object}  ErrorResponse
// @Security     BearerToken
// @Router       /upload/image [post]
func (h *uploadAPIHandler) Image(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if !h.content.Authorized(r.Context(), token) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit := h.maxBytes + multipartOverhead
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, `Multipart field "image" is required`)
		return
	}
	defer file.Close()

	url, err := h.content.UploadImage(r.Context(), token, file)
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}
