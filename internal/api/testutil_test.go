package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/cache"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/testutil"
	"github.com/slyyfoxx/foxxtalk/internal/upload"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "author@example.com"
	testPassword = "s3cret-pass"
)

// testEnv holds the router and the stores behind it.
type testEnv struct {
	Router    http.Handler
	Auth      *auth.Service
	PostStore *store.PostStore
	UserStore *store.UserStore
	User      *store.User
}

type envOptions struct {
	generator llm.Generator
	limiter   *api.LoginLimiter
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores and one password user.
func newTestEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()
	var o envOptions
	for _, fn := range opts {
		fn(&o)
	}

	db := testutil.NewTestDB(t)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	tokens := auth.NewSQLTokenStore(db)
	issuer := auth.NewIssuer([]byte(testSecret), time.Hour, tokens)
	authSvc := auth.NewService(users, issuer, tokens, nil, nil)

	u, err := authSvc.CreateUser(context.Background(), testEmail, "Author", testPassword)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := content.NewService(content.Options{
		Posts:     posts,
		Settings:  settings.NewService(store.NewSettingStore(db), cache.NewMemoryCache(time.Minute), time.Minute, nil),
		Uploads:   upload.NewStore(t.TempDir(), "/uploads", 1<<20, 800),
		Generator: o.generator,
		Auth:      auth.NewBearerTokenMiddleware(issuer.Parser(), tokens, users, nil),
		Accounts:  authSvc,
	})

	router := api.NewAPIRouter(api.Deps{
		Content:        svc,
		Auth:           authSvc,
		LoginLimiter:   o.limiter,
		MaxUploadBytes: 1 << 20,
	})
	return &testEnv{Router: router, Auth: authSvc, PostStore: posts, UserStore: users, User: u}
}

func withGenerator(g llm.Generator) func(*envOptions) {
	return func(o *envOptions) { o.generator = g }
}

func withLimiter(l *api.LoginLimiter) func(*envOptions) {
	return func(o *envOptions) { o.limiter = l }
}

// seedToken logs the seeded user in and returns the bearer token.
func seedToken(t *testing.T, env *testEnv) string {
	t.Helper()
	grant, err := env.Auth.Login(context.Background(), session.Credentials{Email: testEmail, Password: testPassword})
	if err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return grant.Token
}

// seedPost inserts a post directly through the store.
func seedPost(t *testing.T, env *testEnv, title string, published bool) *store.Post {
	t.Helper()
	p, err := env.PostStore.Create(context.Background(), &store.Post{
		Title: title, Content: "Body of " + title, Author: "Author", Published: published, UserID: env.User.ID,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

// do sends a request with an optional JSON body and bearer token.
func do(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}
