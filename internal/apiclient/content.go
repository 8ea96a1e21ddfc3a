package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// call sends a JSON request and maps failures to content errors.
func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	req, err := jsonRequest(method, path, token, in)
	if err != nil {
		return err
	}
	return contentError(c.send(ctx, req, out))
}

func (c *Client) ListPosts(ctx context.Context, token string, includeDrafts bool) ([]*store.Post, error) {
	path := "/posts"
	if includeDrafts {
		path += "?drafts=true"
	}
	var posts []*store.Post
	if err := c.call(ctx, http.MethodGet, path, token, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, token string, id int64) (*store.Post, error) {
	var p store.Post
	if err := c.call(ctx, http.MethodGet, postPath(id), token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, p *store.Post) (*store.Post, error) {
	var out store.Post
	if err := c.call(ctx, http.MethodPost, "/posts", token, postRequest(p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, token string, id int64, p *store.Post) (*store.Post, error) {
	var out store.Post
	if err := c.call(ctx, http.MethodPut, postPath(id), token, postRequest(p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodDelete, postPath(id), token, nil, nil)
}

func postRequest(p *store.Post) api.PostRequest {
	published := p.Published
	return api.PostRequest{
		Title:       p.Title,
		Content:     p.Content,
		Category:    p.Category,
		Tags:        p.Tags,
		Image:       p.Image,
		Author:      p.Author,
		AuthorImage: p.AuthorImage,
		Published:   &published,
	}
}

func (c *Client) Landing(ctx context.Context) (settings.Landing, error) {
	var l settings.Landing
	err := c.call(ctx, http.MethodGet, "/landing", "", nil, &l)
	return l, err
}

func (c *Client) SaveLanding(ctx context.Context, token string, l settings.Landing) (settings.Landing, error) {
	var out settings.Landing
	err := c.call(ctx, http.MethodPost, "/landing", token, l, &out)
	return out, err
}

func (c *Client) Blog(ctx context.Context) (settings.Blog, error) {
	var b settings.Blog
	err := c.call(ctx, http.MethodGet, "/blog-settings", "", nil, &b)
	return b, err
}

func (c *Client) SaveBlog(ctx context.Context, token string, b settings.Blog) (settings.Blog, error) {
	var out settings.Blog
	err := c.call(ctx, http.MethodPost, "/blog-settings", token, b, &out)
	return out, err
}

func (c *Client) Global(ctx context.Context) (settings.Global, error) {
	var g settings.Global
	err := c.call(ctx, http.MethodGet, "/global-settings", "", nil, &g)
	return g, err
}

func (c *Client) SaveGlobal(ctx context.Context, token string, g settings.Global) (settings.Global, error) {
	var out settings.Global
	err := c.call(ctx, http.MethodPost, "/global-settings", token, g, &out)
	return out, err
}

// UploadImage sends r as the multipart field "image".
func (c *Client) UploadImage(ctx context.Context, token string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "upload")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var out api.UploadResponse
	req := request{
		method:      http.MethodPost,
		path:        "/upload/image",
		token:       token,
		body:        &body,
		contentType: mw.FormDataContentType(),
	}
	if err := contentError(c.send(ctx, req, &out)); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) Generate(ctx context.Context, token string, req llm.GenerateRequest) (*llm.Draft, error) {
	var d llm.Draft
	if err := c.call(ctx, http.MethodPost, "/ai/generate", token, req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) GenerateImage(ctx context.Context, token, prompt, size string) (string, error) {
	var out api.UploadResponse
	if err := c.call(ctx, http.MethodPost, "/ai/generate-image", token, api.GenerateImageRequest{Prompt: prompt, Size: size}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) ChangeEmail(ctx context.Context, token, email, password string) error {
	return c.call(ctx, http.MethodPost, "/auth/change-email", token, api.ChangeEmailRequest{Email: email, Password: password}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	return c.call(ctx, http.MethodPost, "/auth/change-password", token,
		api.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}
