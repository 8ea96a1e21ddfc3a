package session

import (
	"context"
	"net/http"
)

type contextKey struct{}

// WithState returns a copy of ctx carrying st.
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the state placed on ctx by Attach or Guard.
func FromContext(ctx context.Context) (State, bool) {
	st, ok := ctx.Value(contextKey{}).(State)
	return st, ok
}

// Attach resolves the state once per request and puts it on the context, so
// every view in the request renders from the same snapshot.
func (m *Manager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := m.Initialize(r.Context())
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
	})
}

// Guard admits authenticated requests only. While the state is unknown it
// serves placeholder (a neutral loading view); unauthenticated requests are
// redirected to the home page.
func (m *Manager) Guard(placeholder http.Handler) func(http.Handler) http.Handler {
	if placeholder == nil {
		placeholder = http.HandlerFunc(loadingPlaceholder)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, ok := FromContext(r.Context())
			if !ok {
				st = m.Initialize(r.Context())
			}
			switch st.Status {
			case StatusAuthenticated:
				next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
			case StatusUnknown:
				placeholder.ServeHTTP(w, r)
			default:
				http.Redirect(w, r, "/", http.StatusSeeOther)
			}
		})
	}
}

func loadingPlaceholder(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`<!doctype html><meta http-equiv="refresh" content="1"><div class="container">Loading...</div>`))
}
