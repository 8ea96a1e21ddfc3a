package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
)

// settingsAPIHandler serves the landing, blog and global settings documents.
type settingsAPIHandler struct {
	content *content.Service
	logger  *slog.Logger
}

func registerSettingsRoutes(r chi.Router, svc *content.Service, logger *slog.Logger) {
	h := &settingsAPIHandler{content: svc, logger: logger}
	r.Get("/landing", h.GetLanding)
	r.Post("/landing", h.SaveLanding)
	r.Get("/blog-settings", h.GetBlog)
	r.Post("/blog-settings", h.SaveBlog)
	r.Get("/global-settings", h.GetGlobal)
	r.Post("/global-settings", h.SaveGlobal)
}

// GetLanding returns the landing page configuration.
// GET /api/landing
//
// @Summary      Get landing page configuration
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  settings.Landing
// @Router       /landing [get]
func (h *settingsAPIHandler) GetLanding(w http.ResponseWriter, r *http.Request) {
	l, err := h.content.Landing(r.Context())
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SaveLanding replaces the landing page configuration.
// POST /api/landing
//
// @Summary      Save landing page configuration
// @Description  Section ids must be non-empty and unique. Unknown section types are stored as sent.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        body  body      settings.Landing  true  "Landing configuration"
// @Success      200   {object}  settings.Landing
// @Failure      400   {object}  DetailResponse
// @Failure      401   {object}  DetailResponse
// @Security     BearerToken
// @Router       /landing [post]
func (h *settingsAPIHandler) SaveLanding(w http.ResponseWriter, r *http.Request) {
	var l settings.Landing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	saved, err := h.content.SaveLanding(r.Context(), auth.BearerToken(r), l)
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetBlog returns the blog settings.
// GET /api/blog-settings
//
// @Summary      Get blog settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  settings.Blog
// @Router       /blog-settings [get]
func (h *settingsAPIHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	b, err := h.content.Blog(r.Context())
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SaveBlog replaces the blog settings.
// POST /api/blog-settings
//
// @Summary      Save blog settings
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        body  body      settings.Blog  true  "Blog settings"
// @Success      200   {object}  settings.Blog
// @Failure      400   {object}  DetailResponse
// @Failure      401   {object}  DetailResponse
// @Security     BearerToken
// @Router       /blog-settings [post]
func (h *settingsAPIHandler) SaveBlog(w http.ResponseWriter, r *http.Request) {
	var b settings.Blog
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	saved, err := h.content.SaveBlog(r.Context(), auth.BearerToken(r), b)
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GetGlobal returns the site-wide settings.
// GET /api/global-settings
//
// @Summary      Get global settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  settings.Global
// @Router       /global-settings [get]
func (h *settingsAPIHandler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	g, err := h.content.Global(r.Context())
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// SaveGlobal replaces the site-wide settings.
// POST /api/global-settings
//
// @Summary      Save global settings
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        body  body      settings.Global  true  "Global settings"
// @Success      200   {object}  settings.Global
// @Failure      400   {object}  DetailResponse
// @Failure      401   {object}  DetailResponse
// @Security     BearerToken
// @Router       /global-settings [post]
func (h *settingsAPIHandler) SaveGlobal(w http.ResponseWriter, r *http.Request) {
	var g settings.Global
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	saved, err := h.content.SaveGlobal(r.Context(), auth.BearerToken(r), g)
	if err != nil {
		writeContentDetail(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
