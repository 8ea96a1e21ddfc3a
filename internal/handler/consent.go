package handler

import (
	"net/http"
	"net/url"
	"strings"
)

// ConsentHandler records the visitor's answer to the cookie banner.
type ConsentHandler struct{}

func newConsentHandler() *ConsentHandler { return &ConsentHandler{} }

// Save handles POST /consent with choice=accepted|declined. The browser is
// sent back to the page it came from.
func (h *ConsentHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	choice := r.FormValue("choice")
	if choice != "accepted" && choice != "declined" {
		http.Error(w, "invalid choice", http.StatusBadRequest)
		return
	}

	// Not HttpOnly so the banner script can hide itself without a reload.
	http.SetCookie(w, &http.Cookie{
		Name:     consentCookie,
		Value:    choice,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})

	if r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, localReferer(r), http.StatusSeeOther)
}

// localReferer returns the path of the Referer when it points at this host,
// "/" otherwise.
func localReferer(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	// "//host" and "/\host" are read by browsers as another origin.
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.HasPrefix(u.Path, "/\\") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
