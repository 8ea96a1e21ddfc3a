package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/testutil"
)

func newTokenTestEnv(t *testing.T) (*auth.SQLTokenStore, *store.UserStore, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ts := auth.NewSQLTokenStore(db)
	us := store.NewUserStore(db)

	u, err := us.Create(context.Background(), "test@example.com", "Test User", "")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return ts, us, u.ID
}

func TestTokenStore_CreateAndGet(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	if err := ts.Create(ctx, "jti-1", userID, exp); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec, err := ts.Get(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.UserID != userID {
		t.Errorf("UserID = %q, want %q", rec.UserID, userID)
	}
	if !rec.Active(time.Now()) {
		t.Error("new token should be active")
	}
	if rec.Active(exp.Add(time.Second)) {
		t.Error("token should be inactive after expiry")
	}

	if _, err := ts.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestTokenStore_Revoke(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()

	if err := ts.Create(ctx, "jti-1", userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ts.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := ts.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	rec, err := ts.Get(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Active(time.Now()) {
		t.Error("revoked token should be inactive")
	}

	if err := ts.Revoke(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Revoke(missing) err = %v, want ErrNotFound", err)
	}
}

func TestTokenStore_RevokeAllForUserKeepsCurrent(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		if err := ts.Create(ctx, id, userID, exp); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := ts.RevokeAllForUser(ctx, userID, "b"); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}

	want := map[string]bool{"a": false, "b": true, "c": false}
	for id, active := range want {
		rec, err := ts.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		if got := rec.Active(time.Now()); got != active {
			t.Errorf("token %s active = %v, want %v", id, got, active)
		}
	}
}

func TestTokenStore_PurgeExpired(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	if err := ts.Create(ctx, "old", userID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("Create old: %v", err)
	}
	if err := ts.Create(ctx, "live", userID, now.Add(time.Hour)); err != nil {
		t.Fatalf("Create live: %v", err)
	}

	n, err := ts.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if _, err := ts.Get(ctx, "old"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old token still present: %v", err)
	}
	if _, err := ts.Get(ctx, "live"); err != nil {
		t.Errorf("live token missing: %v", err)
	}
}

func TestTokenStore_UpdateLastUsed(t *testing.T) {
	ts, _, userID := newTokenTestEnv(t)
	ctx := context.Background()

	if err := ts.Create(ctx, "jti-1", userID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ts.UpdateLastUsed(ctx, "jti-1"); err != nil {
		t.Fatalf("UpdateLastUsed: %v", err)
	}
	rec, err := ts.Get(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.LastUsedAt.Valid {
		t.Error("last_used_at should be set")
	}
}
