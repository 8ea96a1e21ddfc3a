package session_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/slyyfoxx/foxxtalk/internal/session"
)

// fakeParser accepts only the tokens it was given.
type fakeParser map[string]*session.User

func (p fakeParser) ParseUser(token string) (*session.User, error) {
	if u, ok := p[token]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, session.ErrMalformedToken
}

type fakeBackend struct {
	mu        sync.Mutex
	loginFn   func(session.Credentials) (*session.Grant, error)
	exchangeF func(code, verifier string) (*session.Grant, error)
	revoked   []string
}

func (b *fakeBackend) Login(_ context.Context, c session.Credentials) (*session.Grant, error) {
	return b.loginFn(c)
}

func (b *fakeBackend) ExchangeCode(_ context.Context, code, verifier string) (*session.Grant, error) {
	return b.exchangeF(code, verifier)
}

func (b *fakeBackend) Revoke(_ context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = append(b.revoked, token)
	return nil
}

var alice = &session.User{ID: "1", Email: "a@b.com"}

func newTestManager(storage session.Storage, backend session.Backend) *session.Manager {
	return session.NewManager(session.Options{
		Storage: storage,
		Backend: backend,
		Parser:  fakeParser{"t1": alice},
	})
}

func okBackend() *fakeBackend {
	return &fakeBackend{
		loginFn: func(c session.Credentials) (*session.Grant, error) {
			if c.Email == "a@b.com" && c.Password == "secret" {
				return &session.Grant{Token: "t1", User: alice}, nil
			}
			return nil, &session.BackendError{Status: 401, Message: "Invalid email or password"}
		},
		exchangeF: func(code, _ string) (*session.Grant, error) {
			if code == "good" {
				return &session.Grant{Token: "t1"}, nil
			}
			return nil, &session.BackendError{Status: 400, Message: "invalid_grant"}
		},
	}
}

func TestInitialize_WithoutTokenIsUnauthenticated(t *testing.T) {
	tests := []struct {
		name   string
		seed   map[string]string
		wantKs int
	}{
		{"empty storage", nil, 0},
		{"user record without token", map[string]string{session.KeyUser: `{"id":"1","email":"a@b.com"}`}, 0},
		{"unrelated key kept", map[string]string{"cookieConsent": "accepted"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := session.NewMemoryStorage("s")
			for k, v := range tt.seed {
				st.Put(context.Background(), k, v)
			}
			m := newTestManager(st, okBackend())

			got := m.Initialize(context.Background())
			if got.Status != session.StatusUnauthenticated || got.User != nil {
				t.Errorf("state = %+v, want unauthenticated", got)
			}
			if st.Len() != tt.wantKs {
				t.Errorf("storage keys = %d, want %d", st.Len(), tt.wantKs)
			}
		})
	}
}

func TestInitialize_UnparsableTokenIsPurged(t *testing.T) {
	tokens := []string{"garbage", "a.b", "a.b.c", "eyJhbGciOiJub25lIn0..", "", "t1 ", strings.Repeat("x", 4096)}
	for _, tok := range tokens {
		t.Run("token="+tok[:min(len(tok), 12)], func(t *testing.T) {
			st := session.NewMemoryStorage("s")
			ctx := context.Background()
			st.Put(ctx, session.KeyToken, tok)
			st.Put(ctx, session.KeyUser, `{"id":"1","email":"a@b.com"}`)

			m := session.NewManager(session.Options{Storage: st, Backend: okBackend()})
			got := m.Initialize(ctx)
			if got.Authenticated() {
				t.Fatalf("token %q initialized as authenticated", tok)
			}
			if st.Get(ctx, session.KeyToken) != "" || st.Get(ctx, session.KeyUser) != "" {
				t.Errorf("storage not purged for token %q", tok)
			}
		})
	}
}

func TestLogin_ScenarioWithSecondObserver(t *testing.T) {
	st := session.NewMemoryStorage("browser-1")
	broker := session.NewBroker()
	backend := okBackend()
	m := session.NewManager(session.Options{
		Storage: st, Backend: backend, Broker: broker, Parser: fakeParser{"t1": alice},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := broker.Subscribe(ctx, "browser-1")

	got, err := m.Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !got.Authenticated() || got.User.Email != "a@b.com" {
		t.Fatalf("state = %+v, want authenticated as a@b.com", got)
	}
	if st.Get(ctx, session.KeyToken) != "t1" {
		t.Errorf("persisted token = %q, want t1", st.Get(ctx, session.KeyToken))
	}

	select {
	case e := <-events:
		if e.Status != session.StatusAuthenticated {
			t.Errorf("event status = %v, want authenticated", e.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("observer received no event")
	}

	// The observer re-derives its own view from storage.
	observer := newTestManager(st, backend)
	view := observer.Initialize(ctx)
	if !view.Authenticated() || view.User.Email != "a@b.com" {
		t.Errorf("observer state = %+v, want authenticated", view)
	}
}

func TestLogin_PersistsAcrossManagers(t *testing.T) {
	st := session.NewMemoryStorage("s")
	ctx := context.Background()

	if _, err := newTestManager(st, okBackend()).Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	fresh := newTestManager(st, okBackend()).Initialize(ctx)
	if !fresh.Authenticated() || fresh.User.ID != alice.ID {
		t.Errorf("fresh state = %+v, want user %s", fresh, alice.ID)
	}
}

func TestLogin_FailureLeavesStateUnchanged(t *testing.T) {
	st := session.NewMemoryStorage("s")
	m := newTestManager(st, okBackend())
	ctx := context.Background()

	got, err := m.Login(ctx, session.Credentials{Email: "a@b.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got.Status != session.StatusUnauthenticated {
		t.Errorf("status = %v, want unauthenticated", got.Status)
	}
	if msg := session.ErrorMessage(err); msg != "Invalid email or password" {
		t.Errorf("ErrorMessage = %q", msg)
	}
	if st.Len() != 0 {
		t.Errorf("storage keys = %d, want 0", st.Len())
	}
}

func TestErrorMessage_Fallback(t *testing.T) {
	if got := session.ErrorMessage(errors.New("dial tcp: connection refused")); got != session.GenericLoginFailure {
		t.Errorf("ErrorMessage(network) = %q", got)
	}
	if got := session.ErrorMessage(&session.BackendError{Status: 500}); got != session.GenericLoginFailure {
		t.Errorf("ErrorMessage(empty body) = %q", got)
	}
}

func TestLogin_UserDerivedFromTokenWhenGrantHasNone(t *testing.T) {
	backend := okBackend()
	backend.loginFn = func(session.Credentials) (*session.Grant, error) {
		return &session.Grant{Token: "t1"}, nil
	}
	got, err := newTestManager(session.NewMemoryStorage("s"), backend).Login(context.Background(), session.Credentials{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.User == nil || got.User.ID != "1" {
		t.Errorf("user = %+v, want id 1 from token", got.User)
	}
}

func TestLogin_UnparsableGrantTokenIsRejected(t *testing.T) {
	backend := okBackend()
	backend.loginFn = func(session.Credentials) (*session.Grant, error) {
		return &session.Grant{Token: "not-a-token", User: alice}, nil
	}
	st := session.NewMemoryStorage("s")
	got, err := newTestManager(st, backend).Login(context.Background(), session.Credentials{})
	if !errors.Is(err, session.ErrMalformedToken) {
		t.Fatalf("err = %v, want ErrMalformedToken", err)
	}
	if got.Authenticated() || st.Len() != 0 {
		t.Errorf("state = %+v, keys = %d; want nothing persisted", got, st.Len())
	}
}

func TestLogout_AlwaysUnauthenticated(t *testing.T) {
	st := session.NewMemoryStorage("s")
	backend := okBackend()
	m := newTestManager(st, backend)
	ctx := context.Background()

	if _, err := m.Login(ctx, session.Credentials{Email: "a@b.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if next := m.Logout(ctx); next != "/" {
		t.Errorf("Logout redirect = %q, want /", next)
	}
	if st.Len() != 0 {
		t.Errorf("storage keys = %d, want 0", st.Len())
	}
	if got := m.Initialize(ctx); got.Status != session.StatusUnauthenticated {
		t.Errorf("status after logout = %v", got.Status)
	}
	if len(backend.revoked) != 1 || backend.revoked[0] != "t1" {
		t.Errorf("revoked = %v, want [t1]", backend.revoked)
	}

	// Logging out twice is harmless.
	m.Logout(ctx)
	if len(backend.revoked) != 1 {
		t.Errorf("second logout revoked again: %v", backend.revoked)
	}
}

func TestLogout_RedirectVariantReturnsProviderURL(t *testing.T) {
	m := session.NewManager(session.Options{
		Storage: session.NewMemoryStorage("s"),
		Backend: okBackend(),
		Parser:  fakeParser{"t1": alice},
		Redirect: &session.RedirectConfig{
			OAuth2:    &oauth2.Config{ClientID: "client-123"},
			LogoutURL: "https://auth.example.com/logout",
			ReturnTo:  "https://foxxtalk.example.com/",
		},
	})
	next := m.Logout(context.Background())
	u, err := url.Parse(next)
	if err != nil {
		t.Fatalf("parse %q: %v", next, err)
	}
	if u.Host != "auth.example.com" || u.Path != "/logout" {
		t.Errorf("logout URL = %q", next)
	}
	if u.Query().Get("client_id") != "client-123" || u.Query().Get("logout_uri") != "https://foxxtalk.example.com/" {
		t.Errorf("logout query = %v", u.Query())
	}
}

func TestLoginURL(t *testing.T) {
	disabled := newTestManager(session.NewMemoryStorage("s"), okBackend())
	if _, err := disabled.LoginURL("st", "ch"); !errors.Is(err, session.ErrRedirectDisabled) {
		t.Errorf("err = %v, want ErrRedirectDisabled", err)
	}

	m := session.NewManager(session.Options{
		Storage: session.NewMemoryStorage("s"),
		Backend: okBackend(),
		Redirect: &session.RedirectConfig{OAuth2: &oauth2.Config{
			ClientID:    "client-123",
			RedirectURL: "https://foxxtalk.example.com/callback",
			Scopes:      []string{"openid", "profile", "email"},
			Endpoint:    oauth2.Endpoint{AuthURL: "https://auth.example.com/login"},
		}},
	})
	raw, err := m.LoginURL("state-1", "challenge-1")
	if err != nil {
		t.Fatalf("LoginURL: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	want := map[string]string{
		"client_id":             "client-123",
		"redirect_uri":          "https://foxxtalk.example.com/callback",
		"response_type":         "code",
		"scope":                 "openid profile email",
		"state":                 "state-1",
		"code_challenge":        "challenge-1",
		"code_challenge_method": "S256",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, q.Get(k), v)
		}
	}
}

func TestCompleteRedirectLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty code", func(t *testing.T) {
		st := session.NewMemoryStorage("s")
		got, err := newTestManager(st, okBackend()).CompleteRedirectLogin(ctx, "", "")
		if !errors.Is(err, session.ErrMissingCode) {
			t.Errorf("err = %v, want ErrMissingCode", err)
		}
		if got.Status != session.StatusUnauthenticated || st.Len() != 0 {
			t.Errorf("state = %+v, keys = %d", got, st.Len())
		}
	})

	t.Run("exchange failure purges", func(t *testing.T) {
		st := session.NewMemoryStorage("s")
		st.Put(ctx, session.KeyToken, "t1")
		got, err := newTestManager(st, okBackend()).CompleteRedirectLogin(ctx, "bad", "v")
		if err == nil {
			t.Fatal("expected an error")
		}
		if got.Status != session.StatusUnauthenticated || st.Len() != 0 {
			t.Errorf("state = %+v, keys = %d", got, st.Len())
		}
	})

	t.Run("success derives user from token", func(t *testing.T) {
		st := session.NewMemoryStorage("s")
		backend := okBackend()
		var gotVerifier string
		backend.exchangeF = func(code, verifier string) (*session.Grant, error) {
			gotVerifier = verifier
			return &session.Grant{Token: "t1", User: &session.User{ID: "ignored"}}, nil
		}
		got, err := newTestManager(st, backend).CompleteRedirectLogin(ctx, "good", "pkce-verifier")
		if err != nil {
			t.Fatalf("CompleteRedirectLogin: %v", err)
		}
		if !got.Authenticated() || got.User.ID != "1" {
			t.Errorf("state = %+v, want user 1 from token payload", got)
		}
		if gotVerifier != "pkce-verifier" {
			t.Errorf("verifier = %q", gotVerifier)
		}
		if st.Get(ctx, session.KeyToken) != "t1" {
			t.Error("token not persisted")
		}
	})
}

type verifierFunc func(ctx context.Context, u *session.User) error

func (f verifierFunc) Verify(ctx context.Context, u *session.User) error { return f(ctx, u) }

func TestInitialize_Verifier(t *testing.T) {
	ctx := context.Background()
	seed := func() *session.MemoryStorage {
		st := session.NewMemoryStorage("s")
		st.Put(ctx, session.KeyToken, "t1")
		st.Put(ctx, session.KeyUser, `{"id":"1","email":"a@b.com","name":"Alice"}`)
		return st
	}

	t.Run("user gone", func(t *testing.T) {
		st := seed()
		m := session.NewManager(session.Options{
			Storage: st, Backend: okBackend(), Parser: fakeParser{"t1": alice},
			Verifier: verifierFunc(func(context.Context, *session.User) error { return session.ErrUserGone }),
		})
		if got := m.Initialize(ctx); got.Status != session.StatusUnauthenticated {
			t.Errorf("status = %v", got.Status)
		}
		if st.Len() != 0 {
			t.Errorf("storage keys = %d, want 0", st.Len())
		}
	})

	t.Run("slow check is unknown", func(t *testing.T) {
		st := seed()
		m := session.NewManager(session.Options{
			Storage: st, Backend: okBackend(), Parser: fakeParser{"t1": alice},
			ResolveTimeout: 10 * time.Millisecond,
			Verifier: verifierFunc(func(ctx context.Context, _ *session.User) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		})
		if got := m.Initialize(ctx); got.Status != session.StatusUnknown || got.User != nil {
			t.Errorf("state = %+v, want unknown", got)
		}
		if st.Get(ctx, session.KeyToken) != "t1" {
			t.Error("unknown state must not purge storage")
		}
	})

	t.Run("stored profile preferred", func(t *testing.T) {
		st := seed()
		m := session.NewManager(session.Options{
			Storage: st, Backend: okBackend(), Parser: fakeParser{"t1": alice},
			Verifier: verifierFunc(func(context.Context, *session.User) error { return nil }),
		})
		got := m.Initialize(ctx)
		if !got.Authenticated() || got.User.Name != "Alice" {
			t.Errorf("state = %+v, want stored profile", got)
		}
	})
}
