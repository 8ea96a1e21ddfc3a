package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
)

// LandingFormPage is the template data for the landing page editor.
type LandingFormPage struct {
	BasePage
	Landing settings.Landing
	// SectionsJSON is the editable JSON array of section records.
	SectionsJSON string
	SectionTypes []section.Type
	Error        string
}

// SettingsPage is the template data for the blog and site settings forms.
type SettingsPage struct {
	BasePage
	Blog   settings.Blog
	Global settings.Global
	// Categories is the editable "value|Label" list, one per line.
	Categories  string
	BlogError   string
	GlobalError string
}

// AccountPage is the template data for the account forms.
type AccountPage struct {
	BasePage
	EmailError    string
	PasswordError string
}

// SettingsHandler edits the settings documents and the signed-in account.
type SettingsHandler struct {
	*pages
}

func newSettingsHandler(p *pages) *SettingsHandler {
	return &SettingsHandler{pages: p}
}

// Landing serves GET /admin/landing.
func (h *SettingsHandler) Landing(w http.ResponseWriter, r *http.Request) {
	l, err := h.content.Landing(r.Context())
	data := h.landingPage(r, l)
	if err != nil {
		h.logger.Error("load landing settings", "error", err)
		data.Flash = &Flash{Type: "error", Message: content.Message(err, "Landing page settings could not be loaded.")}
	}
	render(w, "admin/landing.html", data)
}

func (h *SettingsHandler) landingPage(r *http.Request, l settings.Landing) LandingFormPage {
	raw, _ := json.MarshalIndent(l.Sections, "", "  ")
	if l.Sections == nil {
		raw = []byte("[]")
	}
	return LandingFormPage{
		BasePage:     h.base(r, "Landing page"),
		Landing:      l,
		SectionsJSON: string(raw),
		SectionTypes: section.Types,
	}
}

// SaveLanding handles POST /admin/landing.
func (h *SettingsHandler) SaveLanding(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	l := settings.Landing{
		Hero: settings.Hero{
			Title:           strings.TrimSpace(r.FormValue("hero_title")),
			Subtitle:        strings.TrimSpace(r.FormValue("hero_subtitle")),
			BackgroundImage: strings.TrimSpace(r.FormValue("hero_background")),
			CTAText:         strings.TrimSpace(r.FormValue("hero_cta_text")),
			CTAURL:          strings.TrimSpace(r.FormValue("hero_cta_url")),
		},
	}
	l.FeaturedCount, _ = strconv.Atoi(r.FormValue("featured_count"))

	rawSections := strings.TrimSpace(r.FormValue("sections"))
	if rawSections == "" {
		rawSections = "[]"
	}
	if err := json.Unmarshal([]byte(rawSections), &l.Sections); err != nil {
		data := h.landingPage(r, l)
		data.SectionsJSON = rawSections
		data.Error = "Sections must be a JSON array of {id, type, data} objects."
		renderStatus(w, http.StatusUnprocessableEntity, "admin/landing.html", data)
		return
	}

	if _, err := h.content.SaveLanding(r.Context(), token(r), l); err != nil {
		data := h.landingPage(r, l)
		data.SectionsJSON = rawSections
		data.Error = content.Message(err, "Landing page settings could not be saved.")
		renderStatus(w, content.Status(err), "admin/landing.html", data)
		return
	}
	h.setFlash(r, "success", "Landing page saved")
	http.Redirect(w, r, "/admin/landing", http.StatusSeeOther)
}

// Settings serves GET /admin/settings.
func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, errB := h.content.Blog(ctx)
	g, errG := h.content.Global(ctx)
	data := h.settingsPage(r, b, g)
	for _, err := range []error{errB, errG} {
		if err != nil {
			h.logger.Error("load settings", "error", err)
			data.Flash = &Flash{Type: "error", Message: content.Message(err, "Settings could not be loaded.")}
		}
	}
	render(w, "admin/settings.html", data)
}

func (h *SettingsHandler) settingsPage(r *http.Request, b settings.Blog, g settings.Global) SettingsPage {
	return SettingsPage{
		BasePage:   h.base(r, "Settings"),
		Blog:       b,
		Global:     g,
		Categories: formatCategories(b.Categories),
	}
}

// SaveBlog handles POST /admin/settings/blog.
func (h *SettingsHandler) SaveBlog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	b := settings.Blog{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Subtitle:   strings.TrimSpace(r.FormValue("subtitle")),
		Categories: parseCategories(r.FormValue("categories")),
	}
	b.PostsPerPage, _ = strconv.Atoi(r.FormValue("posts_per_page"))

	if _, err := h.content.SaveBlog(r.Context(), token(r), b); err != nil {
		g, gerr := h.content.Global(r.Context())
		if gerr != nil {
			g = settings.DefaultGlobal()
		}
		data := h.settingsPage(r, b, g)
		data.Categories = r.FormValue("categories")
		data.BlogError = content.Message(err, "Blog settings could not be saved.")
		renderStatus(w, content.Status(err), "admin/settings.html", data)
		return
	}
	h.setFlash(r, "success", "Blog settings saved")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// SaveGlobal handles POST /admin/settings/global.
func (h *SettingsHandler) SaveGlobal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	g := settings.Global{
		SiteName:        strings.TrimSpace(r.FormValue("site_name")),
		Tagline:         strings.TrimSpace(r.FormValue("tagline")),
		PrimaryColor:    strings.TrimSpace(r.FormValue("primary_color")),
		LogoURL:         strings.TrimSpace(r.FormValue("logo_url")),
		MetaDescription: strings.TrimSpace(r.FormValue("meta_description")),
		MetaKeywords:    strings.TrimSpace(r.FormValue("meta_keywords")),
		FooterText:      strings.TrimSpace(r.FormValue("footer_text")),
		TwitterURL:      strings.TrimSpace(r.FormValue("twitter_url")),
		LinkedInURL:     strings.TrimSpace(r.FormValue("linkedin_url")),
		ContactURL:      strings.TrimSpace(r.FormValue("contact_url")),
	}

	if _, err := h.content.SaveGlobal(r.Context(), token(r), g); err != nil {
		b, berr := h.content.Blog(r.Context())
		if berr != nil {
			b = settings.DefaultBlog()
		}
		data := h.settingsPage(r, b, g)
		data.GlobalError = content.Message(err, "Site settings could not be saved.")
		renderStatus(w, content.Status(err), "admin/settings.html", data)
		return
	}
	h.setFlash(r, "success", "Site settings saved")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// Account serves GET /admin/account.
func (h *SettingsHandler) Account(w http.ResponseWriter, r *http.Request) {
	render(w, "admin/account.html", AccountPage{BasePage: h.base(r, "Account")})
}

// ChangeEmail handles POST /admin/account/email.
func (h *SettingsHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if err := h.content.ChangeEmail(r.Context(), token(r), email, r.FormValue("password")); err != nil {
		data := AccountPage{BasePage: h.base(r, "Account"), EmailError: content.Message(err, "Email could not be changed.")}
		renderStatus(w, content.Status(err), "admin/account.html", data)
		return
	}
	h.setFlash(r, "success", "Email updated. It is shown after your next login.")
	http.Redirect(w, r, "/admin/account", http.StatusSeeOther)
}

// ChangePassword handles POST /admin/account/password.
func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	next := r.FormValue("new_password")
	if next != r.FormValue("confirm_password") {
		data := AccountPage{BasePage: h.base(r, "Account"), PasswordError: "The new passwords do not match"}
		renderStatus(w, http.StatusUnprocessableEntity, "admin/account.html", data)
		return
	}
	if err := h.content.ChangePassword(r.Context(), token(r), r.FormValue("current_password"), next); err != nil {
		data := AccountPage{BasePage: h.base(r, "Account"), PasswordError: content.Message(err, "Password could not be changed.")}
		renderStatus(w, content.Status(err), "admin/account.html", data)
		return
	}
	h.setFlash(r, "success", "Password updated")
	http.Redirect(w, r, "/admin/account", http.StatusSeeOther)
}

func formatCategories(cats []settings.Category) string {
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, c.Value+"|"+c.Label)
	}
	return strings.Join(lines, "\n")
}

// parseCategories reads one "value|Label" pair per line. A line without a
// label uses the value as its label.
func parseCategories(raw string) []settings.Category {
	var cats []settings.Category
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, label, _ := strings.Cut(line, "|")
		cats = append(cats, settings.Category{Value: strings.TrimSpace(value), Label: strings.TrimSpace(label)})
	}
	return cats
}
