// Package settings holds the typed site configuration documents (landing
// page, blog, global) and loads them through a cache.
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/section"
)

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid settings")

type Hero struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	CTAText         string `json:"ctaText,omitempty"`
	CTAURL          string `json:"ctaUrl,omitempty"`
}

// Landing configures the home page.
type Landing struct {
	Hero          Hero             `json:"hero"`
	FeaturedCount int              `json:"featuredCount"`
	Sections      []section.Record `json:"sections"`
}

const (
	defaultFeaturedCount = 3
	maxFeaturedCount     = 12
)

func DefaultLanding() Landing {
	return Landing{
		Hero: Hero{
			Title:    "FoxxTalk",
			Subtitle: "A Blog for Every Conversation",
			CTAText:  "Read the blog",
			CTAURL:   "/blog",
		},
		FeaturedCount: defaultFeaturedCount,
		Sections:      []section.Record{},
	}
}

func (l *Landing) normalize() error {
	if l.FeaturedCount <= 0 {
		l.FeaturedCount = defaultFeaturedCount
	}
	if l.FeaturedCount > maxFeaturedCount {
		return fmt.Errorf("%w: featuredCount must be at most %d", ErrInvalid, maxFeaturedCount)
	}
	if l.Sections == nil {
		l.Sections = []section.Record{}
	}
	if err := section.Validate(l.Sections); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Blog configures the blog listing.
type Blog struct {
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle"`
	PostsPerPage int        `json:"postsPerPage"`
	Categories   []Category `json:"categories"`
}

const (
	defaultPostsPerPage = 3
	maxPostsPerPage     = 50
)

func DefaultBlog() Blog {
	return Blog{
		Title:        "FoxxTalk Blog",
		Subtitle:     "Latest insights and updates",
		PostsPerPage: defaultPostsPerPage,
		Categories: []Category{
			{Value: "general", Label: "General"},
			{Value: "tech", Label: "Technology"},
			{Value: "media", Label: "Media"},
			{Value: "creative", Label: "Creative"},
			{Value: "business", Label: "Business"},
		},
	}
}

var categoryValue = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func (b *Blog) normalize() error {
	if b.PostsPerPage <= 0 {
		b.PostsPerPage = defaultPostsPerPage
	}
	if b.PostsPerPage > maxPostsPerPage {
		return fmt.Errorf("%w: postsPerPage must be at most %d", ErrInvalid, maxPostsPerPage)
	}
	if len(b.Categories) == 0 {
		b.Categories = DefaultBlog().Categories
	}
	seen := make(map[string]bool, len(b.Categories))
	for i := range b.Categories {
		c := &b.Categories[i]
		c.Value = strings.TrimSpace(c.Value)
		if !categoryValue.MatchString(c.Value) || c.Value == "all" {
			return fmt.Errorf("%w: category %q must be lowercase letters, digits and hyphens", ErrInvalid, c.Value)
		}
		if seen[c.Value] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalid, c.Value)
		}
		seen[c.Value] = true
		if c.Label == "" {
			c.Label = c.Value
		}
	}
	return nil
}

// HasCategory reports whether value is one of the configured categories.
func (b Blog) HasCategory(value string) bool {
	for _, c := range b.Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}

// CategoryLabel returns the label for value, or value itself.
func (b Blog) CategoryLabel(value string) string {
	for _, c := range b.Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Global carries site-wide branding and SEO values.
type Global struct {
	SiteName        string `json:"siteName"`
	Tagline         string `json:"tagline"`
	PrimaryColor    string `json:"primaryColor"`
	LogoURL         string `json:"logoUrl,omitempty"`
	MetaDescription string `json:"metaDescription"`
	MetaKeywords    string `json:"metaKeywords,omitempty"`
	FooterText      string `json:"footerText"`
	TwitterURL      string `json:"twitterUrl,omitempty"`
	LinkedInURL     string `json:"linkedinUrl,omitempty"`
	ContactURL      string `json:"contactUrl,omitempty"`
}

func DefaultGlobal() Global {
	return Global{
		SiteName:        "SlyyFoxx Media",
		Tagline:         "FoxxTalk - A Blog for Every Conversation",
		PrimaryColor:    section.DefaultButtonColor,
		MetaDescription: "FoxxTalk is the SlyyFoxx Media blog about technology, media, creativity and business.",
		FooterText:      "FoxxTalk - A Blog for Every Conversation",
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

func (g *Global) normalize() error {
	g.SiteName = strings.TrimSpace(g.SiteName)
	if g.SiteName == "" {
		return fmt.Errorf("%w: siteName is required", ErrInvalid)
	}
	if g.PrimaryColor == "" {
		g.PrimaryColor = section.DefaultButtonColor
	}
	if !hexColor.MatchString(g.PrimaryColor) {
		return fmt.Errorf("%w: primaryColor must be a hex color such as #ff6b35", ErrInvalid)
	}
	return nil
}
