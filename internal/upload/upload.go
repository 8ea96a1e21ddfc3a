// Package upload stores images sent by authors: decodes, validates, shrinks
// and re-encodes them under a random name in the uploads directory.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/slyyfoxx/foxxtalk/internal/metrics"
)

// JPEGQuality is the quality used when re-encoding photos.
const JPEGQuality = 85

var (
	ErrTooLarge    = errors.New("upload: file too large")
	ErrUnsupported = errors.New("upload: unsupported image type")
	ErrEmpty       = errors.New("upload: empty file")
)

// AllowedMimeTypes lists the image types accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store writes processed images below Dir and serves them from BaseURL.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
	maxWidth int
}

func NewStore(dir, baseURL string, maxBytes int64, maxWidth int) *Store {
	return &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		maxWidth: maxWidth,
	}
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string { return s.dir }

// MaxBytes returns the largest accepted upload.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Save reads an image from r, processes it and returns its public URL.
func (s *Store) Save(r io.Reader) (string, error) {
	url, err := s.save(r)
	result := "ok"
	switch {
	case errors.Is(err, ErrTooLarge):
		result = "too_large"
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrEmpty):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	metrics.UploadsTotal.WithLabelValues(result).Inc()
	return url, err
}

func (s *Store) save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	mime := DetectMimeType(data)
	if !AllowedMimeTypes[mime] {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	out, ext, err := s.process(data, mime)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), out, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// process returns the bytes to store and their file extension. GIFs are kept
// as sent so animations survive; everything else is decoded, auto-oriented,
// fitted to the maximum width and re-encoded.
func (s *Store) process(data []byte, mime string) ([]byte, string, error) {
	if mime == "image/gif" {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return data, ".gif", nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	format, ext := imaging.JPEG, ".jpg"
	if mime == "image/png" {
		format, ext = imaging.PNG, ".png"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), ext, nil
}

// DetectMimeType sniffs the MIME type of image data.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}
