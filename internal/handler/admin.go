package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/slyyfoxx/foxxtalk/internal/blog"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// Form intents other than the AI actions.
const (
	intentSave          = "save"
	intentUploadImage   = "upload_image"
	intentGenerateImage = "generate_image"
)

// multipartOverhead is allowed on top of the image size for the other form
// fields and boundaries.
const multipartOverhead = 1 << 20

// AdminPostsPage is the template data for the admin post list.
type AdminPostsPage struct {
	BasePage
	Posts []*store.Post
	Blog  settings.Blog
}

// PostFormPage is the template data for the new and edit post forms.
type PostFormPage struct {
	BasePage
	Post        *store.Post
	Categories  []settings.Category
	ImagePrompt string
	Error       string
}

// Action is the URL the form posts to.
func (p PostFormPage) Action() string {
	if p.Post.ID == 0 {
		return "/admin/posts"
	}
	return "/admin/posts/" + strconv.FormatInt(p.Post.ID, 10)
}

// AIActions lists the assist buttons shown under the editor.
func (p PostFormPage) AIActions() []struct{ Value, Label string } {
	return []struct{ Value, Label string }{
		{string(llm.ActionGenerateIdeas), "Generate ideas"},
		{string(llm.ActionImproveContent), "Improve content"},
		{string(llm.ActionCompletePost), "Complete post"},
	}
}

// AdminHandler manages posts for signed-in authors.
type AdminHandler struct {
	*pages
	maxUploadBytes int64
}

func newAdminHandler(p *pages, maxUploadBytes int64) *AdminHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &AdminHandler{pages: p, maxUploadBytes: maxUploadBytes}
}

func token(r *http.Request) string {
	st, _ := session.FromContext(r.Context())
	return st.Token
}

// Posts serves GET /admin: every post, drafts included, newest first.
func (h *AdminHandler) Posts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := AdminPostsPage{BasePage: h.base(r, "Admin")}

	posts, err := h.content.ListPosts(ctx, token(r), true)
	if err != nil {
		h.logger.Error("list posts for admin", "error", err)
		data.Flash = &Flash{Type: "error", Message: content.Message(err, msgPostsUnavailable)}
	}
	data.Posts = blog.Featured(posts, len(posts))

	if data.Blog, err = h.content.Blog(ctx); err != nil {
		data.Blog = settings.DefaultBlog()
	}
	render(w, "admin/posts.html", data)
}

func (h *AdminHandler) formPage(r *http.Request, p *store.Post) PostFormPage {
	title := "New post"
	if p.ID != 0 {
		title = "Edit post"
	}
	data := PostFormPage{BasePage: h.base(r, title), Post: p}
	bs, err := h.content.Blog(r.Context())
	if err != nil {
		bs = settings.DefaultBlog()
	}
	data.Categories = bs.Categories
	return data
}

// New serves GET /admin/posts/new.
func (h *AdminHandler) New(w http.ResponseWriter, r *http.Request) {
	st, _ := session.FromContext(r.Context())
	p := &store.Post{Category: store.DefaultCategory, Published: true}
	if st.User != nil {
		p.Author = st.User.DisplayName()
	}
	render(w, "admin/post_form.html", h.formPage(r, p))
}

// Edit serves GET /admin/posts/{id}/edit.
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	p, err := h.content.GetPost(r.Context(), token(r), id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.setFlash(r, "error", content.Message(err, msgPostsUnavailable))
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	render(w, "admin/post_form.html", h.formPage(r, p))
}

// Create handles POST /admin/posts.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, 0)
}

// Update handles POST /admin/posts/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.submit(w, r, id)
}

// submit handles every button of the post form. Save persists the post;
// the image and AI buttons update the draft and show the form again.
func (h *AdminHandler) submit(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	tok := token(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p := postFromForm(r)
	p.ID = id
	data := h.formPage(r, p)
	data.ImagePrompt = strings.TrimSpace(r.FormValue("image_prompt"))

	fail := func(err error) {
		data.Error = content.Message(err, "Something went wrong. Please try again.")
		renderStatus(w, content.Status(err), "admin/post_form.html", data)
	}

	if file, _, err := r.FormFile("image_file"); err == nil {
		url, err := h.content.UploadImage(ctx, tok, file)
		file.Close()
		if err != nil {
			fail(err)
			return
		}
		p.Image = url
	}

	intent := r.FormValue("intent")
	switch {
	case intent == intentUploadImage:
		render(w, "admin/post_form.html", data)
		return
	case intent == intentGenerateImage:
		url, err := h.content.GenerateImage(ctx, tok, data.ImagePrompt, "")
		if err != nil {
			fail(err)
			return
		}
		p.Image = url
		data.Flash = &Flash{Type: "success", Message: "Image generated."}
		render(w, "admin/post_form.html", data)
		return
	case llm.Action(intent).Valid():
		d, err := h.content.Generate(ctx, tok, llm.GenerateRequest{Action: llm.Action(intent), Current: draftOf(p)})
		if err != nil {
			fail(err)
			return
		}
		applyDraft(p, d)
		data.Flash = &Flash{Type: "success", Message: "Draft updated. Review it and save."}
		render(w, "admin/post_form.html", data)
		return
	}

	var (
		saved *store.Post
		err   error
	)
	if id == 0 {
		saved, err = h.content.CreatePost(ctx, tok, p)
	} else {
		saved, err = h.content.UpdatePost(ctx, tok, id, p)
	}
	if err != nil {
		fail(err)
		return
	}
	h.logger.Info("post saved", "id", saved.ID, "published", saved.Published)
	h.setFlash(r, "success", "Post saved")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Delete handles POST /admin/posts/{id}/delete.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.content.DeletePost(r.Context(), token(r), id); err != nil {
		h.setFlash(r, "error", content.Message(err, "The post could not be deleted."))
	} else {
		h.setFlash(r, "success", "Post deleted")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func postIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func postFromForm(r *http.Request) *store.Post {
	return &store.Post{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Content:     r.FormValue("content"),
		Category:    r.FormValue("category"),
		Tags:        strings.TrimSpace(r.FormValue("tags")),
		Image:       strings.TrimSpace(r.FormValue("image")),
		Author:      strings.TrimSpace(r.FormValue("author")),
		AuthorImage: strings.TrimSpace(r.FormValue("author_image")),
		Published:   r.FormValue("published") != "",
	}
}

func draftOf(p *store.Post) llm.Draft {
	return llm.Draft{Title: p.Title, Content: p.Content, Category: p.Category, Tags: p.Tags, Image: p.Image}
}

func applyDraft(p *store.Post, d *llm.Draft) {
	p.Title = d.Title
	p.Content = d.Content
	p.Category = d.Category
	p.Tags = d.Tags
	p.Image = d.Image
}
