package handler

import (
	"net/http"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/session"
)

// LoginPage is the template data for the login form.
type LoginPage struct {
	BasePage
	Email string
	Error string
}

// AuthHandler drives the Session Manager from the browser: the password
// form, the identity provider redirect and logout.
type AuthHandler struct {
	*pages
	sessions *session.Manager
	flow     auth.RedirectFlow
	limiter  *api.LoginLimiter
}

func newAuthHandler(p *pages, sessions *session.Manager, flow auth.RedirectFlow, limiter *api.LoginLimiter) *AuthHandler {
	return &AuthHandler{pages: p, sessions: sessions, flow: flow, limiter: limiter}
}

// LoginForm serves GET /login. Signed-in users go straight to /admin.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := LoginPage{BasePage: h.base(r, "Login")}
	if data.Session.Authenticated() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	render(w, "login.html", data)
}

// Login handles POST /login. On failure the form is shown again with the
// backend's message and the session is left as it was.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	creds := session.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if !h.limiter.AllowRequest(r) {
		h.logger.Warn("login throttled", "remote_addr", r.RemoteAddr)
		w.Header().Set("Retry-After", "5")
		data := LoginPage{BasePage: h.base(r, "Login"), Email: creds.Email, Error: "Too many login attempts. Please try again later."}
		renderStatus(w, http.StatusTooManyRequests, "login.html", data)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		data := LoginPage{BasePage: h.base(r, "Login"), Email: creds.Email, Error: "Email and password are required"}
		renderStatus(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	if _, err := h.sessions.Login(r.Context(), creds); err != nil {
		h.logger.Info("login failed", "email", creds.Email, "error", err)
		data := LoginPage{BasePage: h.base(r, "Login"), Email: creds.Email, Error: session.ErrorMessage(err)}
		renderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Redirect handles GET /auth/redirect: it starts the authorization-code flow
// at the identity provider.
func (h *AuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.RedirectEnabled() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	state, challenge, err := h.flow.Begin(w)
	if err != nil {
		h.logger.Error("begin redirect login", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	target, err := h.sessions.LoginURL(state, challenge)
	if err != nil {
		h.logger.Error("build login url", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback handles GET /callback, where the identity provider returns the
// browser. Success lands on /admin; any failure lands on /.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger.Info("identity provider returned an error", "error", e, "description", q.Get("error_description"))
	}

	verifier, err := h.flow.Finish(w, r)
	if err != nil {
		h.logger.Info("redirect login rejected", "error", err)
	}
	// A rejected state counts as a missing code.
	code := q.Get("code")
	if err != nil {
		code = ""
	}
	if _, err := h.sessions.CompleteRedirectLogin(r.Context(), code, verifier); err != nil {
		h.logger.Info("redirect login failed", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	target := h.sessions.Logout(r.Context())
	http.Redirect(w, r, target, http.StatusSeeOther)
}
