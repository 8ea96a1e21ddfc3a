package handler_test

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNavFragment(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.browser(t)

	anon := env.get(t, c, "/partials/nav")
	if anon.Status != http.StatusOK {
		t.Fatalf("status = %d", anon.Status)
	}
	if cc := anon.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	assertContains(t, anon.Body, `id="site-nav"`, `data-status="unauthenticated"`, `href="/login"`)
	assertNotContains(t, anon.Body, "<html")

	env.login(t, c)
	signed := env.get(t, c, "/partials/nav")
	assertContains(t, signed.Body, `data-status="authenticated"`, "Welcome, author@example.com", `action="/logout"`)
}

func TestSessionEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.browser(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.Server.URL+"/events/session", nil)
	if err != nil {
		t.Fatal(err)
	}
	stream := &http.Client{Jar: c.Jar}
	resp, err := stream.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	waitFor := func(want string) {
		t.Helper()
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q", want)
				}
				if strings.TrimSpace(line) == want {
					return
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}

	waitFor("retry: 3000")
	// The stream and the login share a cookie jar, so they share a session.
	env.login(t, c)
	waitFor("event: session")
	waitFor("data: authenticated")

	env.post(t, c, "/logout", nil)
	waitFor("event: session")
	waitFor("data: unauthenticated")
}

func TestSessionEvents_OtherBrowserNotNotified(t *testing.T) {
	env := newTestEnv(t, nil)
	watcher := env.browser(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, env.Server.URL+"/events/session", nil)
	resp, err := (&http.Client{Jar: watcher.Jar}).Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	got := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			got <- sc.Text()
		}
		close(got)
	}()

	env.login(t, env.browser(t))
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case line, ok := <-got:
			if !ok {
				return
			}
			if strings.HasPrefix(line, "event:") {
				t.Fatalf("unexpected event for another browser: %q", line)
			}
		case <-deadline:
			return
		}
	}
}

func TestSessionEvents_EndOnShutdown(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Server.Config.RegisterOnShutdown(env.Sessions.Broker().Close)

	resp, err := env.browser(t).Get(env.Server.URL + "/events/session")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	br := bufio.NewReader(resp.Body)
	if line, err := br.ReadString('\n'); err != nil || strings.TrimSpace(line) != "retry: 3000" {
		t.Fatalf("first line = %q, %v", line, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := env.Server.Config.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown with an open stream: %v after %v", err, time.Since(start))
	}
	// The stream ends cleanly instead of being cut off.
	if _, err := io.ReadAll(br); err != nil {
		t.Errorf("read rest of stream: %v", err)
	}
}
