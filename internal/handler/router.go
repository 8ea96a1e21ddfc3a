package handler

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	csrf "filippo.io/csrf/gorilla"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/slyyfoxx/foxxtalk/docs/swagger"
	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	Sessions       *session.Manager
	Content        Content
	Sections       *section.Renderer
	RedirectFlow   auth.RedirectFlow
	// RedirectLogin sends the login button to the identity provider instead
	// of the password form.
	RedirectLogin bool
	// LoginLimiter throttles POST /login; nil disables it.
	LoginLimiter *api.LoginLimiter
	// API is mounted at /api when the REST API is served by this process.
	API http.Handler
	// UploadsDir and UploadsURL serve stored images; empty when uploads live
	// with a remote API.
	UploadsDir     string
	UploadsURL     string
	MaxUploadBytes int64
	// TrustedOrigins are cross-origin hosts allowed to submit forms.
	TrustedOrigins []string
	Logger         *slog.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css and js/app.js directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	if deps.UploadsDir != "" && deps.UploadsURL != "" {
		prefix := strings.TrimRight(deps.UploadsURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(deps.UploadsDir))))
	}

	// Swagger UI and the REST API authenticate with bearer tokens; they sit
	// outside the browser session and CSRF protection.
	r.Get("/api/docs/*", httpSwagger.WrapHandler)
	if deps.API != nil {
		r.Mount("/api", deps.API)
	}

	p := &pages{
		content:       deps.Content,
		sm:            deps.SessionManager,
		logger:        logger,
		redirectLogin: deps.RedirectLogin,
	}
	public := newPublicHandler(p, deps.Sections)
	authH := newAuthHandler(p, deps.Sessions, deps.RedirectFlow, deps.LoginLimiter)
	admin := newAdminHandler(p, deps.MaxUploadBytes)
	settingsH := newSettingsHandler(p)
	events := newEventsHandler(p, deps.Sessions)
	consent := newConsentHandler()

	csrfOpts := []csrf.Option{csrf.ErrorHandler(http.HandlerFunc(csrfFailed(logger)))}
	if len(deps.TrustedOrigins) > 0 {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins(deps.TrustedOrigins))
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)
		r.Use(csrf.Protect(nil, csrfOpts...))
		r.Use(deps.Sessions.Attach)

		r.Get("/", public.Landing)
		r.Get("/blog", public.Blog)
		r.Get("/blog/{id}", public.Post)
		r.Get("/terms", public.Legal("legal/terms.html", "Terms of Service"))
		r.Get("/privacy", public.Legal("legal/privacy.html", "Privacy Policy"))
		r.Get("/cookies", public.Legal("legal/cookies.html", "Cookie Policy"))

		r.Get("/login", authH.LoginForm)
		r.Post("/login", authH.Login)
		r.Get("/auth/redirect", authH.Redirect)
		r.Get("/callback", authH.Callback)
		r.Post("/logout", authH.Logout)

		r.Post("/consent", consent.Save)
		r.Get("/partials/nav", events.Nav)
		r.Get("/events/session", events.Session)

		r.Group(func(r chi.Router) {
			r.Use(deps.Sessions.Guard(nil))

			r.Get("/admin", admin.Posts)
			r.Get("/admin/posts/new", admin.New)
			r.Post("/admin/posts", admin.Create)
			r.Get("/admin/posts/{id}/edit", admin.Edit)
			r.Post("/admin/posts/{id}", admin.Update)
			r.Post("/admin/posts/{id}/delete", admin.Delete)

			r.Get("/admin/landing", settingsH.Landing)
			r.Post("/admin/landing", settingsH.SaveLanding)
			r.Get("/admin/settings", settingsH.Settings)
			r.Post("/admin/settings/blog", settingsH.SaveBlog)
			r.Post("/admin/settings/global", settingsH.SaveGlobal)
			r.Get("/admin/account", settingsH.Account)
			r.Post("/admin/account/email", settingsH.ChangeEmail)
			r.Post("/admin/account/password", settingsH.ChangePassword)
		})
	})

	return r
}

func csrfFailed(logger *slog.Logger) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		logger.Warn("CSRF validation failed",
			"reason", reason,
			"method", r.Method,
			"path", r.URL.Path,
			"origin", r.Header.Get("Origin"),
			"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
		)
		http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
	}
}
