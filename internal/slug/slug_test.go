package slug

import (
	"errors"
	"strings"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"punctuation", "Go 1.25: What's New?", "go-1-25-what-s-new"},
		{"accents transliterated", "Café Crème", "cafe-creme"},
		{"leading and trailing junk", "  --Launch Day!--  ", "launch-day"},
		{"empty title", "", "post"},
		{"only symbols", "!!!", "post"},
		{"reserved word", "New", "post"},
		{"numbers kept", "Top 10 Tips", "top-10-tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.title)
			if got != tt.want {
				t.Errorf("Derive(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if err := Validate(got); err != nil && got != "post" {
				t.Errorf("Derive(%q) produced invalid slug %q: %v", tt.title, got, err)
			}
		})
	}
}

func TestDerive_TruncatesLongTitles(t *testing.T) {
	got := Derive(strings.Repeat("word ", 40))
	if len(got) > MaxLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("hello", 1); got != "hello" {
		t.Errorf("WithSuffix(hello, 1) = %q", got)
	}
	if got := WithSuffix("hello", 3); got != "hello-3" {
		t.Errorf("WithSuffix(hello, 3) = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{name: "single letter", slug: "a"},
		{name: "with hyphens", slug: "my-post"},
		{name: "digits", slug: "2025-recap"},
		{name: "empty", slug: "", wantErr: ErrSlugEmpty},
		{name: "uppercase", slug: "MyPost", wantErr: ErrSlugFormat},
		{name: "leading hyphen", slug: "-post", wantErr: ErrSlugFormat},
		{name: "trailing hyphen", slug: "post-", wantErr: ErrSlugFormat},
		{name: "space", slug: "my post", wantErr: ErrSlugFormat},
		{name: "reserved new", slug: "new", wantErr: ErrSlugReserved},
		{name: "reserved page", slug: "page", wantErr: ErrSlugReserved},
		{name: "contains reserved word", slug: "new-year", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.slug)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate(%q) = %v, want nil", tt.slug, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}
