package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// Messages returned to clients for authentication failures.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgCodeExchangeFailed = "Authorization failed"
)

// Service is the in-process authentication backend: it checks passwords,
// completes identity provider logins, issues and revokes bearer tokens, and
// manages account credentials.
type Service struct {
	users    *store.UserStore
	issuer   *Issuer
	tokens   TokenStore
	provider *Provider
	logger   *slog.Logger
}

// NewService creates a Service. provider may be nil when no identity provider
// is configured.
func NewService(users *store.UserStore, issuer *Issuer, tokens TokenStore, provider *Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, issuer: issuer, tokens: tokens, provider: provider, logger: logger}
}

// Login checks email and password and issues a token.
func (s *Service) Login(ctx context.Context, creds session.Credentials) (*session.Grant, error) {
	u, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, creds.Password) {
		return nil, &session.BackendError{
			Status:  http.StatusUnauthorized,
			Message: MsgInvalidCredentials,
			Err:     session.ErrInvalidCredentials,
		}
	}
	return s.grant(ctx, u)
}

// ExchangeCode completes an authorization-code login at the identity
// provider, upserting the user it identifies.
func (s *Service) ExchangeCode(ctx context.Context, code, verifier string) (*session.Grant, error) {
	if s.provider == nil {
		return nil, session.ErrRedirectDisabled
	}
	if code == "" {
		return nil, session.ErrMissingCode
	}
	id, err := s.provider.Exchange(ctx, code, verifier)
	if err != nil {
		s.logger.Warn("authorization code exchange failed", "error", err)
		return nil, &session.BackendError{Status: http.StatusUnauthorized, Message: MsgCodeExchangeFailed, Err: err}
	}
	if id.Email == "" {
		return nil, &session.BackendError{Status: http.StatusUnauthorized, Message: "Identity provider returned no email"}
	}
	u, err := s.users.UpsertExternal(ctx, id.Issuer, id.Subject, id.Email, id.Name)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.grant(ctx, u)
}

// Revoke invalidates a token issued by this service. Tokens that no longer
// verify are already unusable and are ignored.
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := s.issuer.Parser().Parse(token)
	if err != nil {
		return nil
	}
	return s.RevokeID(ctx, claims.ID)
}

// RevokeID invalidates the token with the given jti.
func (s *Service) RevokeID(ctx context.Context, id string) error {
	if err := s.tokens.Revoke(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Verify reports session.ErrUserGone when u no longer exists.
func (s *Service) Verify(ctx context.Context, u *session.User) error {
	_, err := s.users.GetByID(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return session.ErrUserGone
	}
	return err
}

// CreateUser adds a password user.
func (s *Service) CreateUser(ctx context.Context, email, name, password string) (*store.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, email, name, hash)
}

// ChangeEmail updates the user's email after confirming their password.
func (s *Service) ChangeEmail(ctx context.Context, userID, email, password string) (*store.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, ErrNoPassword
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrWrongPassword
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	return s.users.UpdateEmail(ctx, userID, email)
}

// ChangePassword replaces the user's password and revokes every token they
// hold except keepTokenID, signing out other devices.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next, keepTokenID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasPassword() {
		return ErrNoPassword
	}
	if !CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, userID, keepTokenID)
}

func (s *Service) grant(ctx context.Context, u *store.User) (*session.Grant, error) {
	token, err := s.issuer.Issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &session.Grant{Token: token, User: SessionUser(u)}, nil
}

// SessionUser maps a stored user to the identity carried by a session.
func SessionUser(u *store.User) *session.User {
	return &session.User{ID: u.ID, Email: u.Email, Name: u.DisplayName}
}
