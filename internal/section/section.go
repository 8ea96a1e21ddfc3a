// Package section models the landing page content sections as a closed set
// of variants and renders them to HTML.
package section

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Type discriminates section variants.
type Type string

const (
	TypeVideo        Type = "video"
	TypeGallery      Type = "gallery"
	TypeCTA          Type = "cta"
	TypeText         Type = "text"
	TypeTestimonials Type = "testimonials"
	TypeFeatures     Type = "features"
	TypeStats        Type = "stats"
	TypeAbout        Type = "about"
	TypeContact      Type = "contact"
	TypeTeam         Type = "team"
)

// Types lists every recognized type in the order the admin editor offers them.
var Types = []Type{
	TypeText, TypeVideo, TypeGallery, TypeCTA, TypeTestimonials,
	TypeFeatures, TypeStats, TypeAbout, TypeContact, TypeTeam,
}

// Known reports whether t is a recognized section type.
func (t Type) Known() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Flex is a scalar that may arrive as a JSON string or number. It keeps the
// literal text of numbers and re-encodes them as numbers.
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("section: want string or number, got %s", b)
		}
		*f = Flex(n.String())
	}
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	if isNumber(string(f)) {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

func (f Flex) String() string { return string(f) }

func isNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// Record is the persisted shape of a section. Data is decoded lazily
// according to Type.
type Record struct {
	ID   Flex            `json:"id"`
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Section is one decoded variant. The method set is unexported, so the set
// of variants is closed to this package.
type Section interface {
	Type() Type
	view() string
	viewData() any
}

type Video struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	VideoFile   string `json:"videoFile,omitempty"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type Gallery struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Images      []Image `json:"images"`
}

type CTA struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ButtonText  string `json:"buttonText,omitempty"`
	ButtonURL   string `json:"buttonUrl,omitempty"`
	ButtonColor string `json:"buttonColor,omitempty"`
}

// Defaults applied by the CTA view.
const (
	DefaultButtonURL   = "#"
	DefaultButtonColor = "#ff6b35"
)

// Href returns the button target, defaulting to "#".
func (c CTA) Href() string {
	if c.ButtonURL == "" {
		return DefaultButtonURL
	}
	return c.ButtonURL
}

// Color returns the button color, defaulting to the brand orange.
func (c CTA) Color() string {
	if c.ButtonColor == "" {
		return DefaultButtonColor
	}
	return c.ButtonColor
}

type Text struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// Paragraphs splits the content on newlines.
func (t Text) Paragraphs() []string {
	if t.Content == "" {
		return nil
	}
	return strings.Split(t.Content, "\n")
}

type Testimonial struct {
	Quote  string `json:"quote"`
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type Testimonials struct {
	Title        string        `json:"title,omitempty"`
	Testimonials []Testimonial `json:"testimonials"`
}

type Feature struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Features struct {
	Title    string    `json:"title,omitempty"`
	Features []Feature `json:"features"`
}

type Stat struct {
	Number Flex   `json:"number"`
	Label  string `json:"label"`
}

type Stats struct {
	Title string `json:"title,omitempty"`
	Stats []Stat `json:"stats"`
}

// About, Contact and Team reuse the payloads and views of Text and
// Testimonials.
type (
	About   Text
	Contact Text
	Team    Testimonials
)

func (Video) Type() Type        { return TypeVideo }
func (Gallery) Type() Type      { return TypeGallery }
func (CTA) Type() Type          { return TypeCTA }
func (Text) Type() Type         { return TypeText }
func (Testimonials) Type() Type { return TypeTestimonials }
func (Features) Type() Type     { return TypeFeatures }
func (Stats) Type() Type        { return TypeStats }
func (About) Type() Type        { return TypeAbout }
func (Contact) Type() Type      { return TypeContact }
func (Team) Type() Type         { return TypeTeam }

func (Video) view() string        { return "section-video" }
func (Gallery) view() string      { return "section-gallery" }
func (CTA) view() string          { return "section-cta" }
func (Text) view() string         { return "section-text" }
func (Testimonials) view() string { return "section-testimonials" }
func (Features) view() string     { return "section-features" }
func (Stats) view() string        { return "section-stats" }
func (About) view() string        { return "section-text" }
func (Contact) view() string      { return "section-text" }
func (Team) view() string         { return "section-testimonials" }

func (s Video) viewData() any        { return s }
func (s Gallery) viewData() any      { return s }
func (s CTA) viewData() any          { return s }
func (s Text) viewData() any         { return s }
func (s Testimonials) viewData() any { return s }
func (s Features) viewData() any     { return s }
func (s Stats) viewData() any        { return s }
func (s About) viewData() any        { return Text(s) }
func (s Contact) viewData() any      { return Text(s) }
func (s Team) viewData() any         { return Testimonials(s) }

// Decode maps a record to its variant. ok is false for unknown types. A
// payload that does not decode yields the variant's empty payload.
func Decode(r Record) (s Section, ok bool) {
	switch r.Type {
	case TypeVideo:
		return decodeInto[Video](r.Data), true
	case TypeGallery:
		return decodeInto[Gallery](r.Data), true
	case TypeCTA:
		return decodeInto[CTA](r.Data), true
	case TypeText:
		return decodeInto[Text](r.Data), true
	case TypeTestimonials:
		return decodeInto[Testimonials](r.Data), true
	case TypeFeatures:
		return decodeInto[Features](r.Data), true
	case TypeStats:
		return decodeInto[Stats](r.Data), true
	case TypeAbout:
		return About(decodeInto[Text](r.Data)), true
	case TypeContact:
		return Contact(decodeInto[Text](r.Data)), true
	case TypeTeam:
		return Team(decodeInto[Testimonials](r.Data)), true
	default:
		return nil, false
	}
}

func decodeInto[T any](data json.RawMessage) T {
	var v T
	if len(data) == 0 {
		return v
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// Validate checks a section list before it is saved: ids must be present and
// unique. Unknown types are allowed and kept as they are.
func Validate(records []Record) error {
	seen := make(map[Flex]bool, len(records))
	for i, r := range records {
		if strings.TrimSpace(string(r.ID)) == "" {
			return fmt.Errorf("section %d: id is required", i+1)
		}
		if seen[r.ID] {
			return fmt.Errorf("section %d: duplicate id %q", i+1, r.ID)
		}
		seen[r.ID] = true
		if r.Type == "" {
			return fmt.Errorf("section %d: type is required", i+1)
		}
	}
	return nil
}
