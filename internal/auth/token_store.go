package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// TokenRecord is a row in the auth_tokens table. ID is the JWT id (jti).
type TokenRecord struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	ExpiresAt  time.Time    `db:"expires_at"`
	CreatedAt  time.Time    `db:"created_at"`
	RevokedAt  sql.NullTime `db:"revoked_at"`
	LastUsedAt sql.NullTime `db:"last_used_at"`
}

// Active reports whether the token is neither revoked nor expired at now.
func (r *TokenRecord) Active(now time.Time) bool {
	return !r.RevokedAt.Valid && now.Before(r.ExpiresAt)
}

// TokenStore tracks issued bearer tokens so they can be revoked before expiry.
type TokenStore interface {
	Create(ctx context.Context, id, userID string, expiresAt time.Time) error
	Get(ctx context.Context, id string) (*TokenRecord, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID, exceptID string) error
	UpdateLastUsed(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// SQLTokenStore is the sqlx-backed implementation of TokenStore.
type SQLTokenStore struct {
	db *sqlx.DB
}

func NewSQLTokenStore(db *sqlx.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *SQLTokenStore) q(query string) string { return s.db.Rebind(query) }

func (s *SQLTokenStore) Create(ctx context.Context, id, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO auth_tokens (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`), id, userID, expiresAt.UTC(), time.Now().UTC())
	return err
}

// Get returns the record for the given jti, or store.ErrNotFound.
func (s *SQLTokenStore) Get(ctx context.Context, id string) (*TokenRecord, error) {
	var rec TokenRecord
	err := s.db.GetContext(ctx, &rec, s.q(`SELECT * FROM auth_tokens WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Revoke marks a token as revoked. Revoking twice is not an error; an unknown
// id returns store.ErrNotFound.
func (s *SQLTokenStore) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE auth_tokens SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?
	`), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RevokeAllForUser revokes every live token of a user except exceptID.
func (s *SQLTokenStore) RevokeAllForUser(ctx context.Context, userID, exceptID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE auth_tokens SET revoked_at = ? WHERE user_id = ? AND id <> ? AND revoked_at IS NULL
	`), time.Now().UTC(), userID, exceptID)
	return err
}

func (s *SQLTokenStore) UpdateLastUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE auth_tokens SET last_used_at = ? WHERE id = ?
	`), time.Now().UTC(), id)
	return err
}

// PurgeExpired deletes records that expired before the given time and returns
// how many were removed.
func (s *SQLTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM auth_tokens WHERE expires_at < ?`), before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
