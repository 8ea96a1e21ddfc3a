// Package llm drafts and improves blog posts through a hosted language model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/config"
)

// Action selects what the model is asked to do with the current draft.
type Action string

const (
	ActionGenerateIdeas  Action = "generate_ideas"
	ActionImproveContent Action = "improve_content"
	ActionCompletePost   Action = "complete_post"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionGenerateIdeas, ActionImproveContent, ActionCompletePost:
		return true
	}
	return false
}

// maxTokens bounds a reply; complete_post asks for a full article.
const maxTokens = 2048

var (
	ErrUnknownAction    = errors.New("llm: unknown action")
	ErrImageUnsupported = errors.New("llm: image generation is not supported by the configured provider")
)

// Draft is the editable part of a post the model reads and writes.
type Draft struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
	Tags     string `json:"tags,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Merge returns current with every non-empty field of suggestion applied.
func Merge(current, suggestion Draft) Draft {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&current.Title, suggestion.Title)
	set(&current.Content, suggestion.Content)
	set(&current.Category, suggestion.Category)
	set(&current.Tags, suggestion.Tags)
	set(&current.Image, suggestion.Image)
	return current
}

// GenerateRequest is the input to the Generator.
type GenerateRequest struct {
	Action  Action `json:"prompt"`
	Current Draft  `json:"currentData"`
}

// Generator produces a draft suggestion via an LLM provider.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Draft, error)
}

// ImageGenerator is implemented by providers that can create images. The
// result is the encoded image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
}

// New creates a Generator based on the config. Returns nil when LLMProvider is
// unset, meaning AI assistance is disabled.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.LLM.Provider {
	case "":
		return nil, nil
	case "anthropic":
		return newAnthropicGenerator(cfg), nil
	case "openai", "openai-compatible":
		return newOpenAIGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
}

// extractJSON returns the outermost JSON object in a model reply, which may
// wrap it in prose or a code fence.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in model reply")
	}
	return s[start : end+1], nil
}

func decodeDraft(reply string) (*Draft, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode draft JSON: %w", err)
	}
	return &d, nil
}
