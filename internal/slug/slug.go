// Package slug derives and validates the URL slugs used for blog posts.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// ErrSlugEmpty is returned when a slug is empty.
	ErrSlugEmpty = errors.New("slug must not be empty")

	// ErrSlugFormat is returned when a slug does not match the required pattern.
	ErrSlugFormat = errors.New("slug must contain only lowercase alphanumeric characters and hyphens, and must not start or end with a hyphen")

	// ErrSlugReserved is returned when a slug collides with a blog route.
	ErrSlugReserved = errors.New("slug is reserved")

	slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]*[a-z0-9])?$`)
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)

	reservedSlugs = map[string]bool{
		"new":  true,
		"page": true,
		"feed": true,
	}
)

// MaxLength bounds derived slugs so suffixed variants still fit the column.
const MaxLength = 80

// Derive turns a post title into a slug: transliterated to ASCII, lowercased,
// with every run of other characters collapsed to a single hyphen. Titles
// that yield nothing usable fall back to "post".
func Derive(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" || reservedSlugs[s] {
		return "post"
	}
	return s
}

// WithSuffix returns the n-th alternative for a taken slug ("title-2", ...).
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Validate checks that slug conforms to the required format and is not
// reserved. It does NOT check uniqueness; that is handled at the store layer.
func Validate(slug string) error {
	if slug == "" {
		return ErrSlugEmpty
	}
	if !slugPattern.MatchString(slug) {
		return ErrSlugFormat
	}
	if reservedSlugs[slug] {
		return fmt.Errorf("%w: %q", ErrSlugReserved, slug)
	}
	return nil
}
