package api_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field string, data []byte, token string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "photo.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	token := seedToken(t, env)

	tests := []struct {
		name       string
		field      string
		data       []byte
		token      string
		wantStatus int
	}{
		{"png", "image", pngBytes(t, 20, 10), token, http.StatusOK},
		{"no token", "image", pngBytes(t, 20, 10), "", http.StatusUnauthorized},
		{"wrong field", "file", pngBytes(t, 20, 10), token, http.StatusBadRequest},
		{"not an image", "image", []byte("just some text"), token, http.StatusBadRequest},
		{"too large", "image", bytes.Repeat([]byte{0}, 2<<20), token, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.Router.ServeHTTP(rr, uploadRequest(t, tt.field, tt.data, tt.token))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decode[api.UploadResponse](t, rr)
			if !strings.HasPrefix(resp.URL, "/uploads/") || !strings.HasSuffix(resp.URL, ".png") {
				t.Errorf("url = %q", resp.URL)
			}
		})
	}
}

type stubGenerator struct {
	draft *llm.Draft
	image []byte
	err   error
}

func (g *stubGenerator) Generate(context.Context, llm.GenerateRequest) (*llm.Draft, error) {
	return g.draft, g.err
}

func (g *stubGenerator) GenerateImage(context.Context, string, string) ([]byte, error) {
	return g.image, g.err
}

func TestGenerate(t *testing.T) {
	gen := &stubGenerator{draft: &llm.Draft{Content: "Expanded body", Tags: "go"}}
	env := newTestEnv(t, withGenerator(gen))
	token := seedToken(t, env)

	req := llm.GenerateRequest{Action: llm.ActionImproveContent, Current: llm.Draft{Title: "Kept", Content: "short"}}
	rr := do(t, env, http.MethodPost, "/ai/generate", token, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rr.Code, rr.Body.String())
	}
	d := decode[llm.Draft](t, rr)
	if d.Title != "Kept" || d.Content != "Expanded body" || d.Tags != "go" {
		t.Errorf("draft = %+v", d)
	}

	rr = do(t, env, http.MethodPost, "/ai/generate", token, map[string]any{"prompt": "write_poem"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status = %d, want 400", rr.Code)
	}

	if rr := do(t, env, http.MethodPost, "/ai/generate", "", req); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rr.Code)
	}

	gen.err = errors.New("provider down")
	rr = do(t, env, http.MethodPost, "/ai/generate", token, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("provider failure: status = %d, want 503", rr.Code)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	token := seedToken(t, env)

	req := llm.GenerateRequest{Action: llm.ActionGenerateIdeas}
	rr := do(t, env, http.MethodPost, "/ai/generate", token, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if msg := decode[api.ErrorResponse](t, rr).Message; msg != "AI assistance is not configured" {
		t.Errorf("message = %q", msg)
	}

	rr = do(t, env, http.MethodPost, "/ai/generate-image", token, api.GenerateImageRequest{Prompt: "a fox"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("image: status = %d, want 503", rr.Code)
	}
}

func TestGenerateImage(t *testing.T) {
	gen := &stubGenerator{image: pngBytes(t, 64, 64)}
	env := newTestEnv(t, withGenerator(gen))
	token := seedToken(t, env)

	rr := do(t, env, http.MethodPost, "/ai/generate-image", token, api.GenerateImageRequest{Prompt: "a fox"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rr.Code, rr.Body.String())
	}
	if url := decode[api.UploadResponse](t, rr).URL; !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q", url)
	}

	rr = do(t, env, http.MethodPost, "/ai/generate-image", token, api.GenerateImageRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty prompt: status = %d, want 400", rr.Code)
	}
}
