package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/slyyfoxx/foxxtalk/internal/config"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openaiGenerator struct {
	apiKey       string
	model        string
	baseURL      string
	promptCustom string
	imageModel   string
	client       *http.Client
}

func newOpenAIGenerator(cfg *config.Config) *openaiGenerator {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &openaiGenerator{
		apiKey:       cfg.LLM.APIKey,
		model:        model,
		baseURL:      baseURL,
		promptCustom: cfg.LLM.Prompt,
		imageModel:   cfg.LLM.ImageModel,
		client:       &http.Client{},
	}
}

type openaiRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Draft, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	prompt, err := renderPrompt(o.promptCustom, PromptData(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	body := openaiRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages:  []openaiMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API returned %d: %s", resp.StatusCode, respBody)
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai")
	}

	return decodeDraft(apiResp.Choices[0].Message.Content)
}

// DefaultImageSize is used when a request names no size.
const DefaultImageSize = "1024x1024"

type openaiImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openaiImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (o *openaiGenerator) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	if size == "" {
		size = DefaultImageSize
	}
	payload, err := json.Marshal(openaiImageRequest{
		Model:          o.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/images/generations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API returned %d: %s", resp.StatusCode, respBody)
	}

	var apiResp openaiImageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) == 0 || apiResp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("empty image response from openai")
	}
	img, err := base64.StdEncoding.DecodeString(apiResp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
