package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// postsAPIHandler provides REST handlers for blog posts.
type postsAPIHandler struct {
	content *content.Service
	logger  *slog.Logger
}

func registerPostRoutes(r chi.Router, svc *content.Service, logger *slog.Logger) {
	h := &postsAPIHandler{content: svc, logger: logger}
	r.Get("/posts", h.List)
	r.Post("/posts", h.Create)
	r.Get("/posts/{id}", h.Get)
	r.Put("/posts/{id}", h.Update)
	r.Delete("/posts/{id}", h.Delete)
}

// List returns posts oldest first.
// GET /api/posts
//
// @Summary      List posts
// @Description  Returns published posts oldest first. With drafts=true and a bearer token, drafts are included.
// @Tags         Posts
// @Produce      json
// @Param        drafts  query     bool  false  "Include drafts (requires a token)"
// @Success      200     {array}   store.Post
// @Failure      401     {object}  ErrorResponse
// @Router       /posts [get]
func (h *postsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	drafts, _ := strconv.ParseBool(r.URL.Query().Get("drafts"))
	posts, err := h.content.ListPosts(r.Context(), auth.BearerToken(r), drafts)
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	if posts == nil {
		posts = []*store.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get returns a single post. Drafts answer 404 without a valid token.
// GET /api/posts/{id}
//
// @Summary      Get a post
// @Tags         Posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  store.Post
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *postsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	p, err := h.content.GetPost(r.Context(), auth.BearerToken(r), id)
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create adds a post. The slug is derived from the title.
// POST /api/posts
//
// @Summary      Create a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        body  body      PostRequest  true  "Post to create"
// @Success      201   {object}  store.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts [post]
func (h *postsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.content.CreatePost(r.Context(), auth.BearerToken(r), req.toPost())
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update replaces the editable fields of a post.
// PUT /api/posts/{id}
//
// @Summary      Update a post
// @Tags         Posts
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Post ID"
// @Param        body  body      PostRequest  true  "New field values"
// @Success      200   {object}  store.Post
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id} [put]
func (h *postsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.content.UpdatePost(r.Context(), auth.BearerToken(r), id, req.toPost())
	if err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a post.
// DELETE /api/posts/{id}
//
// @Summary      Delete a post
// @Tags         Posts
// @Param        id   path  int  true  "Post ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /posts/{id} [delete]
func (h *postsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	if err := h.content.DeletePost(r.Context(), auth.BearerToken(r), id); err != nil {
		writeContentError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Post not found")
		return 0, false
	}
	return id, true
}
