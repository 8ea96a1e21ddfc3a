package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
)

func TestRedirectFlow(t *testing.T) {
	flow := auth.RedirectFlow{}

	begin := httptest.NewRecorder()
	state, challenge, err := flow.Begin(begin)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cookies := begin.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}

	callback := func(query string) (string, error) {
		req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return flow.Finish(httptest.NewRecorder(), req)
	}

	verifier, err := callback("code=abc&state=" + state)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if auth.PKCEChallenge(verifier) != challenge {
		t.Error("verifier does not match the challenge sent to the provider")
	}

	if _, err := callback("code=abc&state=forged"); !errors.Is(err, auth.ErrStateMismatch) {
		t.Errorf("forged state err = %v", err)
	}

	bare := httptest.NewRequest(http.MethodGet, "/callback?state="+state, nil)
	if _, err := flow.Finish(httptest.NewRecorder(), bare); !errors.Is(err, auth.ErrStateMismatch) {
		t.Errorf("missing cookies err = %v", err)
	}
}
