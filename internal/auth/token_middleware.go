package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// ErrUnauthorized is returned for any bearer credential that does not
// identify a live user.
var ErrUnauthorized = errors.New("unauthorized")

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token_id"
)

// WithUser returns a context carrying the authenticated user and token id.
func WithUser(ctx context.Context, u *store.User, tokenID string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, u)
	return context.WithValue(ctx, tokenContextKey, tokenID)
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(userContextKey).(*store.User)
	return u
}

// TokenIDFromContext returns the jti of the bearer token that authenticated
// the request.
func TokenIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tokenContextKey).(string)
	return id
}

// BearerTokenMiddleware authenticates API requests via Bearer token. Tokens
// must verify, be recorded in the token store, be unrevoked, and belong to an
// existing user.
type BearerTokenMiddleware struct {
	parser session.HMACParser
	tokens TokenStore
	users  *store.UserStore
	logger *slog.Logger
}

func NewBearerTokenMiddleware(parser session.HMACParser, ts TokenStore, us *store.UserStore, logger *slog.Logger) *BearerTokenMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &BearerTokenMiddleware{parser: parser, tokens: ts, users: us, logger: logger}
}

// Resolve validates a raw token and returns its owner and jti.
func (m *BearerTokenMiddleware) Resolve(ctx context.Context, raw string) (*store.User, string, error) {
	if raw == "" {
		return nil, "", ErrUnauthorized
	}
	claims, err := m.parser.Parse(raw)
	if err != nil {
		return nil, "", ErrUnauthorized
	}
	rec, err := m.tokens.Get(ctx, claims.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", ErrUnauthorized
	}
	if !rec.Active(time.Now()) || rec.UserID != claims.Subject {
		return nil, "", ErrUnauthorized
	}
	user, err := m.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", ErrUnauthorized
	}

	// last_used_at is advisory; it must not slow the request.
	go func(id string) {
		if err := m.tokens.UpdateLastUsed(context.Background(), id); err != nil {
			m.logger.Debug("token last-used update failed", "error", err)
		}
	}(rec.ID)

	return user, rec.ID, nil
}

// Authenticate is an http.Handler middleware that extracts and validates a
// Bearer token. On success the owner is available through UserFromContext;
// otherwise the request is answered with 401.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, id, err := m.Resolve(r.Context(), BearerToken(r))
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				m.logger.Error("bearer token lookup failed", "error", err)
			}
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, id)))
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
}
