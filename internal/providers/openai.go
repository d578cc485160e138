package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// OpenAIProvider calls any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	httpClient   *http.Client
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Generate implements schema.TextProvider. The prompt is sent as a single
// user message; pazarbot's pipeline keeps all conversation context inside
// the prompt text itself.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts schema.GenOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body := map[string]any{
		"model":       model,
		"messages":    []map[string]any{{"role": "user", "content": prompt}},
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	return parseOpenAIResponse(raw)
}

// openAIRespBody is the subset of the chat completion response we use.
type openAIRespBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func parseOpenAIResponse(raw []byte) (string, error) {
	var body openAIRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	text := strings.TrimSpace(body.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return text, nil
}
