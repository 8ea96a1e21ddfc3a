// Package content is the site's content backend: posts, settings documents,
// image uploads, AI drafting and account changes. Reads are public; every
// write is authorized by the caller's bearer token.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/metrics"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/upload"
)

// Authenticator resolves a bearer token to its owner and token id.
type Authenticator interface {
	Resolve(ctx context.Context, raw string) (*store.User, string, error)
}

// Accounts changes the credentials of a user.
type Accounts interface {
	ChangeEmail(ctx context.Context, userID, email, password string) (*store.User, error)
	ChangePassword(ctx context.Context, userID, current, next, keepTokenID string) error
}

type Options struct {
	Posts     *store.PostStore
	Settings  *settings.Service
	Uploads   *upload.Store
	Generator llm.Generator
	Auth      Authenticator
	Accounts  Accounts
	Logger    *slog.Logger
}

type Service struct {
	posts    *store.PostStore
	settings *settings.Service
	uploads  *upload.Store
	gen      llm.Generator
	auth     Authenticator
	accounts Accounts
	logger   *slog.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		posts:    opts.Posts,
		settings: opts.Settings,
		uploads:  opts.Uploads,
		gen:      opts.Generator,
		auth:     opts.Auth,
		accounts: opts.Accounts,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type caller struct {
	user    *store.User
	tokenID string
}

func (s *Service) authorize(ctx context.Context, token string) (*caller, error) {
	u, id, err := s.auth.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return nil, newError(ErrUnauthorized, "Not authenticated")
		}
		return nil, err
	}
	return &caller{user: u, tokenID: id}, nil
}

// Authorized reports whether token is currently accepted for writes.
func (s *Service) Authorized(ctx context.Context, token string) bool {
	_, err := s.authorize(ctx, token)
	return err == nil
}

// ListPosts returns posts oldest first. Drafts are included only for an
// authorized caller that asks for them.
func (s *Service) ListPosts(ctx context.Context, token string, includeDrafts bool) ([]*store.Post, error) {
	if includeDrafts {
		if _, err := s.authorize(ctx, token); err != nil {
			return nil, err
		}
	}
	return s.posts.List(ctx, !includeDrafts)
}

// GetPost returns one post. Drafts are visible only to authorized callers.
func (s *Service) GetPost(ctx context.Context, token string, id int64) (*store.Post, error) {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "Post not found")
	}
	if !p.Published {
		if token == "" || !s.Authorized(ctx, token) {
			return nil, newError(ErrNotFound, "Post not found")
		}
	}
	return p, nil
}

func (s *Service) CreatePost(ctx context.Context, token string, p *store.Post) (*store.Post, error) {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	p.UserID = c.user.ID
	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return nil, mapStoreError(err, "Post not found")
	}
	s.logger.Info("post created", "id", created.ID, "slug", created.Slug, "user_id", c.user.ID)
	s.refreshPostCount(ctx)
	return created, nil
}

func (s *Service) UpdatePost(ctx context.Context, token string, id int64, p *store.Post) (*store.Post, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.posts.Update(ctx, p)
	if err != nil {
		return nil, mapStoreError(err, "Post not found")
	}
	return updated, nil
}

func (s *Service) DeletePost(ctx context.Context, token string, id int64) error {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return mapStoreError(err, "Post not found")
	}
	s.logger.Info("post deleted", "id", id, "user_id", c.user.ID)
	s.refreshPostCount(ctx)
	return nil
}

func (s *Service) refreshPostCount(ctx context.Context) {
	n, err := s.posts.Count(ctx)
	if err != nil {
		s.logger.Warn("counting posts failed", "error", err)
		return
	}
	metrics.PostsTotal.Set(float64(n))
}

func (s *Service) Landing(ctx context.Context) (settings.Landing, error) {
	return s.settings.Landing(ctx)
}

func (s *Service) SaveLanding(ctx context.Context, token string, l settings.Landing) (settings.Landing, error) {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return settings.Landing{}, err
	}
	saved, err := s.settings.SaveLanding(ctx, l, c.user.ID)
	return saved, mapSettingsError(err)
}

func (s *Service) Blog(ctx context.Context) (settings.Blog, error) {
	return s.settings.Blog(ctx)
}

func (s *Service) SaveBlog(ctx context.Context, token string, b settings.Blog) (settings.Blog, error) {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return settings.Blog{}, err
	}
	saved, err := s.settings.SaveBlog(ctx, b, c.user.ID)
	return saved, mapSettingsError(err)
}

func (s *Service) Global(ctx context.Context) (settings.Global, error) {
	return s.settings.Global(ctx)
}

func (s *Service) SaveGlobal(ctx context.Context, token string, g settings.Global) (settings.Global, error) {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return settings.Global{}, err
	}
	saved, err := s.settings.SaveGlobal(ctx, g, c.user.ID)
	return saved, mapSettingsError(err)
}

// UploadImage stores an image and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, token string, r io.Reader) (string, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return "", err
	}
	url, err := s.uploads.Save(r)
	if err != nil {
		return "", mapUploadError(err)
	}
	return url, nil
}

// Generate asks the model for a suggestion and returns the current draft with
// the suggestion merged in.
func (s *Service) Generate(ctx context.Context, token string, req llm.GenerateRequest) (*llm.Draft, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	if s.gen == nil {
		return nil, newError(ErrUnavailable, "AI assistance is not configured")
	}
	if !req.Action.Valid() {
		return nil, newError(ErrInvalid, fmt.Sprintf("Unknown AI action %q", req.Action))
	}
	suggestion, err := s.gen.Generate(ctx, req)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(string(req.Action), "error").Inc()
		s.logger.Error("AI generation failed", "action", req.Action, "error", err)
		return nil, newError(ErrUnavailable, "AI generation failed. Please try again.")
	}
	metrics.AIRequestsTotal.WithLabelValues(string(req.Action), "ok").Inc()
	merged := llm.Merge(req.Current, *suggestion)
	return &merged, nil
}

// GenerateImage creates an image from prompt, stores it as an upload and
// returns its URL.
func (s *Service) GenerateImage(ctx context.Context, token, prompt, size string) (string, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return "", err
	}
	ig, ok := s.gen.(llm.ImageGenerator)
	if s.gen == nil || !ok {
		return "", newError(ErrUnavailable, "Image generation is not configured")
	}
	if prompt == "" {
		return "", newError(ErrInvalid, "A prompt is required")
	}
	img, err := ig.GenerateImage(ctx, prompt, size)
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues("image", "error").Inc()
		s.logger.Error("AI image generation failed", "error", err)
		return "", newError(ErrUnavailable, "Image generation failed. Please try again.")
	}
	metrics.AIRequestsTotal.WithLabelValues("image", "ok").Inc()
	url, err := s.uploads.Save(bytes.NewReader(img))
	if err != nil {
		return "", mapUploadError(err)
	}
	return url, nil
}

// ChangeEmail updates the caller's email after checking their password.
func (s *Service) ChangeEmail(ctx context.Context, token, email, password string) error {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return err
	}
	if _, err := s.accounts.ChangeEmail(ctx, c.user.ID, email, password); err != nil {
		return mapAccountError(err)
	}
	return nil
}

// ChangePassword replaces the caller's password. The token used for the call
// stays valid; every other token of the user is revoked.
func (s *Service) ChangePassword(ctx context.Context, token, current, next string) error {
	c, err := s.authorize(ctx, token)
	if err != nil {
		return err
	}
	return mapAccountError(s.accounts.ChangePassword(ctx, c.user.ID, current, next, c.tokenID))
}

func mapStoreError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, notFound)
	case errors.Is(err, store.ErrPostInvalid):
		return newError(ErrInvalid, err.Error())
	}
	return err
}

func mapSettingsError(err error) error {
	if errors.Is(err, settings.ErrInvalid) {
		return newError(ErrInvalid, err.Error())
	}
	return err
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return newError(ErrTooLarge, "Image is too large")
	case errors.Is(err, upload.ErrUnsupported), errors.Is(err, upload.ErrEmpty):
		return newError(ErrInvalid, "Upload a JPEG, PNG, GIF or WebP image")
	}
	return err
}

func mapAccountError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrWrongPassword):
		return newError(ErrInvalid, "Current password is incorrect")
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrInvalidEmail):
		return newError(ErrInvalid, err.Error())
	case errors.Is(err, auth.ErrNoPassword):
		return newError(ErrInvalid, "This account signs in through the identity provider")
	case errors.Is(err, store.ErrEmailTaken):
		return newError(ErrConflict, "That email is already in use")
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, "Account not found")
	}
	return err
}
