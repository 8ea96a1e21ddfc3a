package handler

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/blog"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Site    settings.Global
	Session session.State
	// Consent is the cookieConsent cookie: "accepted", "declined" or "" when
	// the visitor has not chosen yet.
	Consent string
	Path    string
	Title   string
	Flash   *Flash
	// RedirectLogin is set when the login button starts the identity
	// provider flow instead of showing the password form.
	RedirectLogin bool
}

// ShowConsentBanner reports whether the cookie banner is rendered.
func (p BasePage) ShowConsentBanner() bool { return p.Consent == "" }

// PageTitle joins the page title with the site name.
func (p BasePage) PageTitle() string {
	if p.Title == "" {
		return p.Site.SiteName
	}
	return p.Title + " - " + p.Site.SiteName
}

const consentCookie = "cookieConsent"

func consentFromRequest(r *http.Request) string {
	c, err := r.Cookie(consentCookie)
	if err != nil {
		return ""
	}
	if c.Value == "accepted" || c.Value == "declined" {
		return c.Value
	}
	return ""
}

// funcs is shared by every template set.
var funcs = template.FuncMap{
	"markdown": blog.Markdown,
	"excerpt": func(src string, n int) string {
		return blog.Excerpt(blog.PlainText(src), n)
	},
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
}

// pageCache maps a render key (e.g. "landing.html", "admin/posts.html") to a
// compiled template set containing base.html + partials + that one page file.
// Each page gets its own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	baseCount := map[string]int{}
	_ = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}
		baseCount[filepath.Base(p)]++
		return nil
	})

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		rel, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[rel] = t

		// Alias under bare basename when it is unique across all page files.
		base := filepath.Base(p)
		if baseCount[base] == 1 {
			pageCache[base] = t
		}
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// render executes a full-page template (base layout + named page).
// tmpl is the render key, e.g. "landing.html" or "admin/posts.html".
func render(w http.ResponseWriter, tmpl string, data any) {
	renderStatus(w, http.StatusOK, tmpl, data)
}

// renderStatus is render with an explicit status code.
func renderStatus(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("render page", "template", tmpl, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// renderFragment executes a named template from the global partials set.
func renderFragment(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := fragmentTmpl.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// pages builds the layout data shared by every handler.
type pages struct {
	content Content
	sm      flashStore
	logger  *slog.Logger
	// redirectLogin mirrors BasePage.RedirectLogin.
	redirectLogin bool
}

// flashStore is the part of the session manager used for flash messages.
type flashStore interface {
	Put(ctx context.Context, key string, val any)
	PopString(ctx context.Context, key string) string
}

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

func (p *pages) setFlash(r *http.Request, typ, msg string) {
	p.sm.Put(r.Context(), flashTypeKey, typ)
	p.sm.Put(r.Context(), flashKey, msg)
}

func (p *pages) popFlash(r *http.Request) *Flash {
	msg := p.sm.PopString(r.Context(), flashKey)
	typ := p.sm.PopString(r.Context(), flashTypeKey)
	if msg == "" {
		return nil
	}
	if typ == "" {
		typ = "success"
	}
	return &Flash{Type: typ, Message: msg}
}

// base returns the layout data for r and consumes the pending flash message.
func (p *pages) base(r *http.Request, title string) BasePage {
	b := p.layout(r, title)
	b.Flash = p.popFlash(r)
	return b
}

// layout is base without the flash message, for fragments that must not
// consume it. Site settings that cannot be loaded fall back to the defaults
// so public pages keep rendering.
func (p *pages) layout(r *http.Request, title string) BasePage {
	g, err := p.content.Global(r.Context())
	if err != nil {
		p.logger.Warn("load global settings", "error", err)
		g = settings.DefaultGlobal()
	}
	st, _ := session.FromContext(r.Context())
	return BasePage{
		Site:          g,
		Session:       st,
		Consent:       consentFromRequest(r),
		Path:          r.URL.Path,
		Title:         title,
		RedirectLogin: p.redirectLogin,
	}
}
