package migrations

// Posts keep an integer identity so blog URLs stay short; auto-increment
// syntax differs per driver.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePosts, downCreatePosts)
}

func upCreatePosts(ctx context.Context, tx *sql.Tx) error {
	var id string
	switch dialect {
	case "postgres":
		id = "id SERIAL PRIMARY KEY"
	case "mysql":
		id = "id INTEGER NOT NULL AUTO_INCREMENT PRIMARY KEY"
	default: // sqlite3
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	ddl := fmt.Sprintf(`CREATE TABLE posts (
    %s,
    title        VARCHAR(255) NOT NULL,
    slug         VARCHAR(255) NOT NULL,
    content      TEXT         NOT NULL,
    category     VARCHAR(64)  NOT NULL DEFAULT 'general',
    tags         VARCHAR(512) NOT NULL DEFAULT '',
    image        VARCHAR(1024) NOT NULL DEFAULT '',
    author       VARCHAR(255) NOT NULL DEFAULT '',
    author_image VARCHAR(1024) NOT NULL DEFAULT '',
    published    BOOLEAN      NOT NULL DEFAULT TRUE,
    user_id      VARCHAR(64)  NOT NULL DEFAULT '',
    created_at   TIMESTAMP    NOT NULL,
    updated_at   TIMESTAMP    NOT NULL
)`, id)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE UNIQUE INDEX idx_posts_slug ON posts (slug)`); err != nil {
		return fmt.Errorf("create posts slug index: %w", err)
	}
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_posts_created_at ON posts (created_at)`)
	return err
}

func downCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS posts`)
	return err
}
