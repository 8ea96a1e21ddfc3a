package auth

import (
	"errors"
	"net/http"
	"time"
)

const (
	cookieState        = "__auth_state"
	cookieCodeVerifier = "__auth_pkce"
)

// ErrStateMismatch is returned when the callback state does not match the
// one stored when the redirect began.
var ErrStateMismatch = errors.New("auth: state mismatch")

// RedirectFlow keeps the state and PKCE verifier of an authorization-code
// login in short-lived cookies between the redirect and the callback.
type RedirectFlow struct {
	Secure bool
}

// Begin generates a state and PKCE pair, stores state and verifier in
// cookies, and returns the state and challenge for the authorization URL.
func (f RedirectFlow) Begin(w http.ResponseWriter) (state, challenge string, err error) {
	state, err = GenerateState()
	if err != nil {
		return "", "", err
	}
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		return "", "", err
	}
	f.setCookie(w, cookieState, state)
	f.setCookie(w, cookieCodeVerifier, verifier)
	return state, challenge, nil
}

// Finish checks the callback state against the stored one, clears the
// cookies and returns the PKCE verifier.
func (f RedirectFlow) Finish(w http.ResponseWriter, r *http.Request) (string, error) {
	defer func() {
		clearCookie(w, cookieState)
		clearCookie(w, cookieCodeVerifier)
	}()

	stateCookie, err := r.Cookie(cookieState)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		return "", ErrStateMismatch
	}
	verifierCookie, err := r.Cookie(cookieCodeVerifier)
	if err != nil {
		return "", ErrStateMismatch
	}
	return verifierCookie.Value, nil
}

func (f RedirectFlow) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
