package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/cache"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/handler"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/testutil"
	"github.com/slyyfoxx/foxxtalk/internal/upload"
	"github.com/slyyfoxx/foxxtalk/web"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "author@example.com"
	testPassword = "s3cret-pass"
)

// testEnv is a running site backed by an in-memory database.
type testEnv struct {
	Server    *httptest.Server
	Sessions  *session.Manager
	PostStore *store.PostStore
	User      *store.User
}

// newTestEnv starts the web router with one password user. gen may be nil;
// opts adjust the router deps before it is built.
func newTestEnv(t *testing.T, gen llm.Generator, opts ...func(*handler.Deps)) *testEnv {
	t.Helper()
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
		Generator: gen,
		Auth:      auth.NewBearerTokenMiddleware(issuer.Parser(), tokens, users, nil),
		Accounts:  authSvc,
	})

	sm := scs.New()
	sessions := session.NewManager(session.Options{
		Storage:  session.NewSCSStorage(sm),
		Backend:  authSvc,
		Parser:   issuer.Parser(),
		Verifier: authSvc,
	})
	sections, err := section.NewRenderer(web.TemplateFS, nil)
	if err != nil {
		t.Fatalf("section renderer: %v", err)
	}

	deps := handler.Deps{
		SessionManager: sm,
		Sessions:       sessions,
		Content:        svc,
		Sections:       sections,
		MaxUploadBytes: 1 << 20,
	}
	for _, o := range opts {
		o(&deps)
	}
	srv := httptest.NewServer(handler.NewRouter(deps))
	t.Cleanup(srv.Close)
	return &testEnv{Server: srv, Sessions: sessions, PostStore: posts, User: u}
}

// browser returns a client with its own cookie jar that does not follow
// redirects.
func (e *testEnv) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// page is a finished response with its body read.
type page struct {
	Status   int
	Location string
	Body     string
	Header   http.Header
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string) page {
	t.Helper()
	resp, err := c.Get(e.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readPage(t, resp)
}

func (e *testEnv) post(t *testing.T, c *http.Client, path string, form url.Values) page {
	t.Helper()
	resp, err := c.PostForm(e.Server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readPage(t, resp)
}

func readPage(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return page{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(b), Header: resp.Header}
}

// login signs the browser in through the login form.
func (e *testEnv) login(t *testing.T, c *http.Client) {
	t.Helper()
	p := e.post(t, c, "/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	if p.Status != http.StatusSeeOther || p.Location != "/admin" {
		t.Fatalf("login: status %d location %q; body: %s", p.Status, p.Location, p.Body)
	}
}

func (e *testEnv) seedPost(t *testing.T, title, category string, published bool) *store.Post {
	t.Helper()
	p, err := e.PostStore.Create(context.Background(), &store.Post{
		Title: title, Content: "Body of " + title, Category: category, Author: "Sly", Published: published, UserID: e.User.ID,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body does not contain %q", w)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Errorf("body unexpectedly contains %q", u)
		}
	}
}
