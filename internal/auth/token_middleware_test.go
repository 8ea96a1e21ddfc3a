package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/testutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type bearerEnv struct {
	issuer *auth.Issuer
	tokens *auth.SQLTokenStore
	users  *store.UserStore
	mw     *auth.BearerTokenMiddleware
	user   *store.User
}

func newBearerEnv(t *testing.T) *bearerEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	env := &bearerEnv{
		tokens: auth.NewSQLTokenStore(db),
		users:  store.NewUserStore(db),
	}
	env.issuer = auth.NewIssuer(testSecret, time.Hour, env.tokens)
	env.mw = auth.NewBearerTokenMiddleware(env.issuer.Parser(), env.tokens, env.users, nil)

	u, err := env.users.Create(context.Background(), "author@example.com", "Author", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	env.user = u
	return env
}

// okHandler records the authenticated user and returns 200.
func okHandler(got **store.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func serve(mw *auth.BearerTokenMiddleware, header string) (int, *store.User) {
	var got *store.User
	req := httptest.NewRequest("POST", "/api/posts", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&got)).ServeHTTP(rec, req)
	return rec.Code, got
}

func TestBearerTokenMiddleware_ValidToken(t *testing.T) {
	env := newBearerEnv(t)
	token, err := env.issuer.Issue(context.Background(), env.user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	code, got := serve(env.mw, "Bearer "+token)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if got == nil || got.ID != env.user.ID {
		t.Errorf("context user = %+v, want id %s", got, env.user.ID)
	}
}

func TestBearerTokenMiddleware_Rejects(t *testing.T) {
	env := newBearerEnv(t)
	ctx := context.Background()

	revoked, _ := env.issuer.Issue(ctx, env.user)
	claims, err := env.issuer.Parser().Parse(revoked)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := env.tokens.Revoke(ctx, claims.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// Signed with the right key but never recorded.
	unrecorded, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID: "not-recorded", Issuer: auth.TokenIssuer, Subject: env.user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)

	otherKey := auth.NewIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, env.tokens)
	forged, _ := otherKey.Issue(ctx, env.user)

	expiredIssuer := auth.NewIssuer(testSecret, -time.Minute, env.tokens)
	expired, _ := expiredIssuer.Issue(ctx, env.user)

	gone, _ := env.issuer.Issue(ctx, env.user)
	if err := env.users.Delete(ctx, env.user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer value", "Bearer "},
		{"garbage", "Bearer not-a-jwt"},
		{"revoked", "Bearer " + revoked},
		{"unrecorded", "Bearer " + unrecorded},
		{"wrong key", "Bearer " + forged},
		{"expired", "Bearer " + expired},
		{"deleted user", "Bearer " + gone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, got := serve(env.mw, tt.header)
			if code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", code, http.StatusUnauthorized)
			}
			if got != nil {
				t.Errorf("handler should not run, got user %+v", got)
			}
		})
	}
}

func TestIssuer_ClaimsCarryProfile(t *testing.T) {
	env := newBearerEnv(t)
	token, err := env.issuer.Issue(context.Background(), env.user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The remote-mode parser reads the same payload without the key.
	u, err := session.PayloadParser{}.ParseUser(token)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	want := session.User{ID: env.user.ID, Email: "author@example.com", Name: "Author"}
	if *u != want {
		t.Errorf("user = %+v, want %+v", *u, want)
	}
}
