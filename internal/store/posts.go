package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/slyyfoxx/foxxtalk/internal/slug"
)

// Post is a blog article. Content is Markdown.
type Post struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Content     string    `db:"content" json:"content"`
	Category    string    `db:"category" json:"category"`
	Tags        string    `db:"tags" json:"tags"`
	Image       string    `db:"image" json:"image"`
	Author      string    `db:"author" json:"author"`
	AuthorImage string    `db:"author_image" json:"authorImage"`
	Published   bool      `db:"published" json:"published"`
	UserID      string    `db:"user_id" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TagList splits the comma-separated tags, dropping blanks.
func (p *Post) TagList() []string {
	var out []string
	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DefaultCategory is applied to posts saved without one.
const DefaultCategory = "general"

// ErrPostInvalid wraps validation failures on create and update.
var ErrPostInvalid = errors.New("invalid post")

// Validate checks the fields every post must carry.
func (p *Post) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: title is required", ErrPostInvalid)
	case strings.TrimSpace(p.Content) == "":
		return fmt.Errorf("%w: content is required", ErrPostInvalid)
	case strings.TrimSpace(p.Author) == "":
		return fmt.Errorf("%w: author is required", ErrPostInvalid)
	case len(p.Title) > 255:
		return fmt.Errorf("%w: title must be at most 255 characters", ErrPostInvalid)
	}
	return nil
}

// maxSlugAttempts bounds the suffix search for a free slug.
const maxSlugAttempts = 50

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) q(query string) string { return s.db.Rebind(query) }

// List returns posts oldest first. When publishedOnly is set drafts are omitted.
func (s *PostStore) List(ctx context.Context, publishedOnly bool) ([]*Post, error) {
	query := `SELECT * FROM posts ORDER BY created_at ASC, id ASC`
	args := []any{}
	if publishedOnly {
		query = `SELECT * FROM posts WHERE published = ? ORDER BY created_at ASC, id ASC`
		args = append(args, true)
	}
	var posts []*Post
	if err := s.db.SelectContext(ctx, &posts, s.q(query), args...); err != nil {
		return nil, err
	}
	return posts, nil
}

// Get returns the post with the given id, or ErrNotFound.
func (s *PostStore) Get(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM posts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug returns the post with the given slug, or ErrNotFound.
func (s *PostStore) GetBySlug(ctx context.Context, postSlug string) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM posts WHERE slug = ?`), postSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create validates and inserts p, deriving a unique slug from its title.
func (s *PostStore) Create(ctx context.Context, p *Post) (*Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	now := time.Now().UTC()
	base := slug.Derive(p.Title)

	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		id, err := s.insert(ctx, p, candidate, now)
		if isUniqueConstraintError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}
	return nil, fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func (s *PostStore) insert(ctx context.Context, p *Post, postSlug string, now time.Time) (int64, error) {
	const cols = `(title, slug, content, category, tags, image, author, author_image, published, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{p.Title, postSlug, p.Content, p.Category, p.Tags, p.Image, p.Author,
		p.AuthorImage, p.Published, p.UserID, now, now}

	// lib/pq does not implement LastInsertId.
	if s.db.DriverName() == "postgres" {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.q(`INSERT INTO posts `+cols+` RETURNING id`), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.q(`INSERT INTO posts `+cols), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update replaces the editable fields of an existing post. The slug is kept
// so published URLs stay stable.
func (s *PostStore) Update(ctx context.Context, p *Post) (*Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE posts SET title = ?, content = ?, category = ?, tags = ?, image = ?,
			author = ?, author_image = ?, published = ?, updated_at = ?
		WHERE id = ?
	`), p.Title, p.Content, p.Category, p.Tags, p.Image, p.Author, p.AuthorImage,
		p.Published, time.Now().UTC(), p.ID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

// Delete removes a post.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Count returns the number of posts, drafts included.
func (s *PostStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts`)
	return n, err
}
