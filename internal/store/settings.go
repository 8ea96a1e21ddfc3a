package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Setting names.
const (
	SettingLanding = "landing"
	SettingBlog    = "blog"
	SettingGlobal  = "global"
)

// Setting is one named JSON configuration document.
type Setting struct {
	Name      string    `db:"name"`
	Data      string    `db:"data"`
	UpdatedBy string    `db:"updated_by"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SettingStore persists configuration documents without interpreting them.
type SettingStore struct {
	db *sqlx.DB
}

func NewSettingStore(db *sqlx.DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) q(query string) string { return s.db.Rebind(query) }

// Get returns the named setting, or ErrNotFound when it was never saved.
func (s *SettingStore) Get(ctx context.Context, name string) (*Setting, error) {
	var st Setting
	err := s.db.GetContext(ctx, &st, s.q(`SELECT * FROM settings WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Put stores data under name, replacing any previous document.
func (s *SettingStore) Put(ctx context.Context, name string, data []byte, userID string) error {
	now := time.Now().UTC()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.GetContext(ctx, &exists, s.q(`SELECT COUNT(*) FROM settings WHERE name = ?`), name)
	if err != nil {
		return err
	}
	if exists > 0 {
		_, err = tx.ExecContext(ctx, s.q(`UPDATE settings SET data = ?, updated_by = ?, updated_at = ? WHERE name = ?`),
			string(data), userID, now, name)
	} else {
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO settings (name, data, updated_by, updated_at) VALUES (?, ?, ?, ?)`),
			name, string(data), userID, now)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
