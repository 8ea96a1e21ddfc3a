package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/config"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultAnthropicModel   = "claude-haiku-4-5-20251001"
)

type anthropicGenerator struct {
	apiKey       string
	model        string
	baseURL      string
	promptCustom string
	client       *http.Client
}

func newAnthropicGenerator(cfg *config.Config) *anthropicGenerator {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &anthropicGenerator{
		apiKey:       cfg.LLM.APIKey,
		model:        model,
		baseURL:      strings.TrimRight(baseURL, "/"),
		promptCustom: cfg.LLM.Prompt,
		client:       &http.Client{},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicGenerator) Generate(ctx context.Context, req GenerateRequest) (*Draft, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	prompt, err := renderPrompt(a.promptCustom, PromptData(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, respBody)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from anthropic")
	}

	return decodeDraft(apiResp.Content[0].Text)
}
