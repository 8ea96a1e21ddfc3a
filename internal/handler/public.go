package handler

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/blog"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

const msgPostsUnavailable = "Posts could not be loaded right now. Please try again later."

// LandingPage is the template data for the home page.
type LandingPage struct {
	BasePage
	Hero     settings.Hero
	Sections template.HTML
	Featured []*store.Post
}

// BlogPage is the template data for the blog listing.
type BlogPage struct {
	BasePage
	Settings settings.Blog
	Page     blog.Page
	Search   string
	Category string
}

// PageURL returns the listing URL for page n, keeping the current filters.
func (p BlogPage) PageURL(n int) string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	if p.Category != "" && p.Category != blog.AllCategories {
		q.Set("category", p.Category)
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if len(q) == 0 {
		return "/blog"
	}
	return "/blog?" + q.Encode()
}

// PostPage is the template data for a single post. Post is nil when the
// post does not exist.
type PostPage struct {
	BasePage
	Post     *store.Post
	Category string
}

// PublicHandler serves the pages anyone can read.
type PublicHandler struct {
	*pages
	sections *section.Renderer
}

// newPublicHandler creates a new PublicHandler.
func newPublicHandler(p *pages, sections *section.Renderer) *PublicHandler {
	return &PublicHandler{pages: p, sections: sections}
}

// Landing serves GET /: the hero, the configured sections and the newest
// posts.
func (h *PublicHandler) Landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := LandingPage{BasePage: h.base(r, "")}

	l, err := h.content.Landing(ctx)
	if err != nil {
		h.logger.Warn("load landing settings", "error", err)
		l = settings.DefaultLanding()
	}
	data.Hero = l.Hero
	data.Sections = h.sections.HTML(l.Sections)

	posts, err := h.content.ListPosts(ctx, "", false)
	if err != nil {
		h.logger.Warn("list posts for landing page", "error", err)
	}
	data.Featured = blog.Featured(posts, l.FeaturedCount)
	render(w, "landing.html", data)
}

// Blog serves GET /blog with optional q, category and page parameters.
func (h *PublicHandler) Blog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := BlogPage{
		BasePage: h.base(r, "Blog"),
		Search:   q.Get("q"),
		Category: q.Get("category"),
	}
	if data.Category == "" {
		data.Category = blog.AllCategories
	}

	bs, err := h.content.Blog(ctx)
	if err != nil {
		h.logger.Warn("load blog settings", "error", err)
		bs = settings.DefaultBlog()
	}
	data.Settings = bs

	posts, err := h.content.ListPosts(ctx, "", false)
	if err != nil {
		h.logger.Error("list posts", "error", err)
		data.Flash = &Flash{Type: "error", Message: msgPostsUnavailable}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	data.Page = blog.Paginate(blog.Filter(posts, data.Search, data.Category), page, bs.PostsPerPage)
	render(w, "blog/index.html", data)
}

// Post serves GET /blog/{id}. A missing post renders the in-page not found
// view with status 404.
func (h *PublicHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := PostPage{BasePage: h.base(r, "Post not found")}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		renderStatus(w, http.StatusNotFound, "blog/post.html", data)
		return
	}

	// A signed-in author may preview drafts.
	p, err := h.content.GetPost(ctx, data.Session.Token, id)
	switch {
	case errors.Is(err, content.ErrNotFound):
		renderStatus(w, http.StatusNotFound, "blog/post.html", data)
		return
	case err != nil:
		h.logger.Error("get post", "id", id, "error", err)
		data.Title = "Blog"
		data.Flash = &Flash{Type: "error", Message: msgPostsUnavailable}
		renderStatus(w, http.StatusServiceUnavailable, "blog/post.html", data)
		return
	}

	bs, err := h.content.Blog(ctx)
	if err != nil {
		bs = settings.DefaultBlog()
	}
	data.Title = p.Title
	data.Post = p
	data.Category = bs.CategoryLabel(p.Category)
	render(w, "blog/post.html", data)
}

// Legal serves one of the static legal pages.
func (h *PublicHandler) Legal(tmpl, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, h.base(r, title))
	}
}
