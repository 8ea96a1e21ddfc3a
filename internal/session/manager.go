package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/slyyfoxx/foxxtalk/internal/metrics"
)

// Backend is the remote authentication contract.
type Backend interface {
	// Login exchanges email and password for a grant.
	Login(ctx context.Context, creds Credentials) (*Grant, error)
	// ExchangeCode trades an authorization code (and PKCE verifier) from
	// the identity provider for a grant.
	ExchangeCode(ctx context.Context, code, verifier string) (*Grant, error)
}

// Revoker is implemented by backends that can invalidate a token on logout.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// Verifier confirms a user decoded from a token still exists. It returns
// ErrUserGone when it does not; any other error leaves the state unresolved.
type Verifier interface {
	Verify(ctx context.Context, u *User) error
}

// RedirectConfig enables login through an external identity provider.
type RedirectConfig struct {
	OAuth2 *oauth2.Config
	// LogoutURL is the provider's logout endpoint; empty when it has none.
	LogoutURL string
	// ReturnTo is where the provider sends the browser after logout.
	ReturnTo string
}

func (c *RedirectConfig) logoutURL() (string, bool) {
	if c == nil || c.LogoutURL == "" {
		return "", false
	}
	u, err := url.Parse(c.LogoutURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if c.OAuth2 != nil {
		q.Set("client_id", c.OAuth2.ClientID)
	}
	if c.ReturnTo != "" {
		q.Set("logout_uri", c.ReturnTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Options configures a Manager. Storage and Backend are required.
type Options struct {
	Storage  Storage
	Backend  Backend
	Parser   TokenParser
	Broker   *Broker
	Redirect *RedirectConfig
	Verifier Verifier
	// ResolveTimeout bounds the Verifier; past it the state is unknown.
	ResolveTimeout time.Duration
	Logger         *slog.Logger
}

const defaultResolveTimeout = 2 * time.Second

// Manager owns the authentication state of every browser it serves.
type Manager struct {
	storage        Storage
	backend        Backend
	parser         TokenParser
	broker         *Broker
	redirect       *RedirectConfig
	verifier       Verifier
	resolveTimeout time.Duration
	logger         *slog.Logger
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		storage:        opts.Storage,
		backend:        opts.Backend,
		parser:         opts.Parser,
		broker:         opts.Broker,
		redirect:       opts.Redirect,
		verifier:       opts.Verifier,
		resolveTimeout: opts.ResolveTimeout,
		logger:         opts.Logger,
	}
	if m.parser == nil {
		m.parser = PayloadParser{}
	}
	if m.broker == nil {
		m.broker = NewBroker()
	}
	if m.resolveTimeout <= 0 {
		m.resolveTimeout = defaultResolveTimeout
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Broker returns the broker state changes are published on.
func (m *Manager) Broker() *Broker { return m.broker }

// Scope returns the storage scope of the browser in ctx.
func (m *Manager) Scope(ctx context.Context) string { return m.storage.Scope(ctx) }

// RedirectEnabled reports whether LoginURL can be used.
func (m *Manager) RedirectEnabled() bool {
	return m.redirect != nil && m.redirect.OAuth2 != nil
}

// Initialize derives the current state from storage. A token that cannot be
// parsed is purged together with the user record and yields
// StatusUnauthenticated; a Verifier that does not answer in time yields
// StatusUnknown and leaves storage alone.
func (m *Manager) Initialize(ctx context.Context) State {
	start := time.Now()
	defer func() { metrics.SessionResolveDuration.Observe(time.Since(start).Seconds()) }()

	token := m.storage.Get(ctx, KeyToken)
	if token == "" {
		if m.storage.Get(ctx, KeyUser) != "" {
			m.storage.Remove(ctx, KeyUser)
		}
		return State{Status: StatusUnauthenticated}
	}

	user, err := m.parser.ParseUser(token)
	if err != nil {
		m.logger.Info("discarding unusable session token", "error", err)
		m.purge(ctx, purgeReason(err))
		return State{Status: StatusUnauthenticated}
	}
	// The stored record may carry a richer profile than the token payload.
	if rec, ok := decodeUser(m.storage.Get(ctx, KeyUser)); ok && rec.ID == user.ID {
		user = rec
	}

	if m.verifier != nil {
		vctx, cancel := context.WithTimeout(ctx, m.resolveTimeout)
		defer cancel()
		err := m.verifier.Verify(vctx, user)
		switch {
		case errors.Is(err, ErrUserGone):
			m.logger.Info("session user no longer exists", "user_id", user.ID)
			m.purge(ctx, "user_gone")
			return State{Status: StatusUnauthenticated}
		case err != nil:
			m.logger.Warn("session user check failed", "user_id", user.ID, "error", err)
			return State{Status: StatusUnknown}
		}
	}

	return State{Status: StatusAuthenticated, User: user, Token: token}
}

// Login submits credentials to the backend. On success the token and user are
// persisted and the new state is published; on failure storage is untouched
// and the error carries the backend's message (see ErrorMessage).
func (m *Manager) Login(ctx context.Context, creds Credentials) (State, error) {
	grant, err := m.backend.Login(ctx, creds)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		return m.Initialize(ctx), err
	}
	st, err := m.establish(ctx, grant, grant.User)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		return m.Initialize(ctx), err
	}
	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()
	return st, nil
}

// LoginURL returns the identity provider URL that starts the redirect flow.
// challenge is the S256 PKCE challenge of the verifier the caller keeps for
// CompleteRedirectLogin.
func (m *Manager) LoginURL(state, challenge string) (string, error) {
	if !m.RedirectEnabled() {
		return "", ErrRedirectDisabled
	}
	return m.redirect.OAuth2.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// CompleteRedirectLogin exchanges the authorization code returned by the
// identity provider. The user is always taken from the token payload. Any
// failure, including an empty code, leaves the browser unauthenticated.
func (m *Manager) CompleteRedirectLogin(ctx context.Context, code, verifier string) (State, error) {
	if code == "" {
		metrics.LoginsTotal.WithLabelValues("redirect", "failure").Inc()
		return State{Status: StatusUnauthenticated}, ErrMissingCode
	}
	grant, err := m.backend.ExchangeCode(ctx, code, verifier)
	if err == nil {
		var st State
		if st, err = m.establish(ctx, grant, nil); err == nil {
			metrics.LoginsTotal.WithLabelValues("redirect", "success").Inc()
			return st, nil
		}
	}
	metrics.LoginsTotal.WithLabelValues("redirect", "failure").Inc()
	m.purge(ctx, "exchange_failed")
	return State{Status: StatusUnauthenticated}, err
}

// Logout clears the session, publishes the change and returns where the
// browser should go next: the identity provider's logout endpoint when one is
// configured, the home page otherwise. Revoking the token at the backend is
// best-effort and never blocks the local logout.
func (m *Manager) Logout(ctx context.Context) string {
	token := m.storage.Get(ctx, KeyToken)
	m.purge(ctx, "logout")

	if r, ok := m.backend.(Revoker); ok && token != "" {
		if err := r.Revoke(ctx, token); err != nil {
			m.logger.Warn("token revocation failed", "error", err)
		}
	}
	if u, ok := m.redirect.logoutURL(); ok {
		return u
	}
	return "/"
}

func (m *Manager) establish(ctx context.Context, grant *Grant, user *User) (State, error) {
	if grant == nil || grant.Token == "" {
		return State{}, fmt.Errorf("%w: backend returned no token", ErrMalformedToken)
	}
	parsed, err := m.parser.ParseUser(grant.Token)
	if err != nil {
		return State{}, err
	}
	if user == nil || user.ID == "" {
		user = parsed
	}

	if r, ok := m.storage.(Renewer); ok {
		if err := r.Renew(ctx); err != nil {
			return State{}, fmt.Errorf("renew session: %w", err)
		}
	}
	m.storage.Put(ctx, KeyToken, grant.Token)
	m.storage.Put(ctx, KeyUser, encodeUser(user))
	m.publish(ctx, StatusAuthenticated)
	return State{Status: StatusAuthenticated, User: user, Token: grant.Token}, nil
}

func (m *Manager) purge(ctx context.Context, reason string) {
	m.storage.Remove(ctx, KeyToken)
	m.storage.Remove(ctx, KeyUser)
	metrics.SessionsPurgedTotal.WithLabelValues(reason).Inc()
	m.publish(ctx, StatusUnauthenticated)
}

func (m *Manager) publish(ctx context.Context, status Status) {
	m.broker.Publish(Event{Scope: m.storage.Scope(ctx), Status: status})
}

func purgeReason(err error) string {
	if errors.Is(err, ErrExpiredToken) {
		return "expired"
	}
	return "malformed"
}
