package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/session"
)

func TestBroker_ScopeFiltering(t *testing.T) {
	b := session.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine := b.Subscribe(ctx, "a")
	all := b.Subscribe(ctx, "")

	b.Publish(session.Event{Scope: "b", Status: session.StatusAuthenticated})
	b.Publish(session.Event{Scope: "a", Status: session.StatusUnauthenticated})

	select {
	case e := <-mine:
		if e.Scope != "a" {
			t.Errorf("scoped subscriber got event for %q", e.Scope)
		}
	case <-time.After(time.Second):
		t.Fatal("scoped subscriber got nothing")
	}
	if len(all) != 2 {
		t.Errorf("wildcard subscriber buffered %d events, want 2", len(all))
	}
}

func TestBroker_PublishDoesNotBlock(t *testing.T) {
	b := session.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = b.Subscribe(ctx, "a")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(session.Event{Scope: "a"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestBroker_SubscriptionEndsWithContext(t *testing.T) {
	b := session.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx, "a")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("Subscribers = %d, want 0", n)
	}
}

func TestBroker_CloseEndsSubscriptions(t *testing.T) {
	b := session.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	before := b.Subscribe(ctx, "a")

	b.Close()
	b.Close()
	after := b.Subscribe(ctx, "a")

	for name, ch := range map[string]<-chan session.Event{"before": before, "after": after} {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("%s: expected closed channel", name)
			}
		case <-time.After(time.Second):
			t.Errorf("%s: channel not closed", name)
		}
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("Subscribers = %d, want 0", n)
	}
	// Cancelling afterwards must not close the channel twice.
	cancel()
	time.Sleep(10 * time.Millisecond)
	b.Publish(session.Event{Scope: "a"})
}
