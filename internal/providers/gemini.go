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

// GeminiProvider calls the Gemini generateContent API directly over HTTP.
type GeminiProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	httpClient   *http.Client
}

func (p *GeminiProvider) DefaultModel() string { return p.defaultModel }

// Generate implements schema.TextProvider.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts schema.GenOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	genConfig := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = opts.MaxTokens
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": genConfig,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.apiBase, model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	return parseGeminiResponse(raw)
}

// geminiRespBody is the subset of the generateContent response we use.
type geminiRespBody struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func parseGeminiResponse(raw []byte) (string, error) {
	var body geminiRespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if len(body.Candidates) == 0 {
		return "", fmt.Errorf("empty candidates in gemini response")
	}

	var sb strings.Builder
	for _, part := range body.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty text in gemini response")
	}
	return text, nil
}
