package migrations

// The sessions table backs the scs stores, whose column types differ by
// driver (BLOB/REAL for SQLite, BYTEA/TIMESTAMPTZ for PostgreSQL,
// BLOB/TIMESTAMP(6) for MySQL). It is unused when sessions live in Redis.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessions, downCreateSessions)
}

func upCreateSessions(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE sessions (
    token  TEXT PRIMARY KEY,
    data   BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
)`
	case "mysql":
		ddl = `CREATE TABLE sessions (
    token  VARCHAR(43) PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry TIMESTAMP(6) NOT NULL
)`
	default: // sqlite3
		ddl = `CREATE TABLE sessions (
    token  TEXT PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry REAL NOT NULL
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS; the table is new here anyway.
	if _, err := tx.ExecContext(ctx, `CREATE INDEX sessions_expiry_idx ON sessions (expiry)`); err != nil {
		return fmt.Errorf("create sessions expiry index: %w", err)
	}
	return nil
}

func downCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
