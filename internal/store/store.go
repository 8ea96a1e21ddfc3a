// Package store holds the sqlx-backed persistence for users, posts and site
// settings. Handlers never query the database directly.
package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when an email address already belongs to another user.
	ErrEmailTaken = errors.New("email address is already in use")
)

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
