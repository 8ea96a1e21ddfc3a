package handler

import (
	"context"
	"io"

	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// Content is the content backend the pages read from and write to. It is
// implemented in-process by content.Service and over HTTP by apiclient.Client.
// Every write takes the bearer token of the signed-in user.
type Content interface {
	ListPosts(ctx context.Context, token string, includeDrafts bool) ([]*store.Post, error)
	GetPost(ctx context.Context, token string, id int64) (*store.Post, error)
	CreatePost(ctx context.Context, token string, p *store.Post) (*store.Post, error)
	UpdatePost(ctx context.Context, token string, id int64, p *store.Post) (*store.Post, error)
	DeletePost(ctx context.Context, token string, id int64) error

	Landing(ctx context.Context) (settings.Landing, error)
	SaveLanding(ctx context.Context, token string, l settings.Landing) (settings.Landing, error)
	Blog(ctx context.Context) (settings.Blog, error)
	SaveBlog(ctx context.Context, token string, b settings.Blog) (settings.Blog, error)
	Global(ctx context.Context) (settings.Global, error)
	SaveGlobal(ctx context.Context, token string, g settings.Global) (settings.Global, error)

	UploadImage(ctx context.Context, token string, r io.Reader) (string, error)
	Generate(ctx context.Context, token string, req llm.GenerateRequest) (*llm.Draft, error)
	GenerateImage(ctx context.Context, token, prompt, size string) (string, error)

	ChangeEmail(ctx context.Context, token, email, password string) error
	ChangePassword(ctx context.Context, token, current, next string) error
}
