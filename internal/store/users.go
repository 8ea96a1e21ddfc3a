package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// User is an author who can sign in to the admin panel. Password users carry
// a bcrypt hash; users from the identity provider carry provider and subject.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	PasswordHash string    `db:"password_hash"`
	Provider     string    `db:"provider"`
	Subject      string    `db:"subject"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a password user. Emails are stored lowercased.
func (s *UserStore) Create(ctx context.Context, email, displayName, passwordHash string) (*User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, normalizeEmail(email), displayName, passwordHash, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpsertExternal creates or refreshes a user signed in through the identity
// provider, matched first by (provider, subject) and then by email so a
// password user who later signs in externally keeps one account.
func (s *UserStore) UpsertExternal(ctx context.Context, provider, subject, email, displayName string) (*User, error) {
	email = normalizeEmail(email)
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.GetContext(ctx, &id, s.q(`SELECT id FROM users WHERE provider = ? AND subject = ?`), provider, subject)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &id, s.q(`SELECT id FROM users WHERE email = ?`), email)
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.New().String()
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO users (id, email, display_name, provider, subject, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), id, email, displayName, provider, subject, now, now)
	case err == nil:
		_, err = tx.ExecContext(ctx, s.q(`
			UPDATE users SET email = ?, display_name = ?, provider = ?, subject = ?, updated_at = ?
			WHERE id = ?
		`), email, displayName, provider, subject, now, id)
	}
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.get(ctx, `SELECT * FROM users WHERE email = ?`, normalizeEmail(email))
}

// GetByID returns the user with the given id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

func (s *UserStore) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll returns all users ordered by email.
func (s *UserStore) ListAll(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := s.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY email ASC`); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateEmail changes the user's email, returning ErrEmailTaken on collision.
func (s *UserStore) UpdateEmail(ctx context.Context, id, email string) (*User, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`),
		normalizeEmail(email), time.Now().UTC(), id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
