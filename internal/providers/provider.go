// Package providers implements direct-HTTP clients for the external text
// generation backends: Google's Gemini generateContent API and any
// OpenAI-compatible chat completions endpoint.
//
// Providers carry a request timeout; a call that exceeds it fails like any
// other external error and is handled by the caller's fallback path, never
// left pending.
package providers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// Params holds the raw config values a provider is built from. The caller
// extracts these from config.Config to avoid an import cycle.
type Params struct {
	Name    string // "gemini" (default) or "openai"/"custom"
	APIKey  string
	APIBase string
	Model   string
	Timeout time.Duration
}

// New constructs the provider implementation selected by p.Name.
func New(p Params) schema.TextProvider {
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: p.Timeout}

	switch strings.ToLower(p.Name) {
	case "openai", "custom":
		base := p.APIBase
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		model := p.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &OpenAIProvider{
			apiKey:       p.APIKey,
			apiBase:      strings.TrimRight(base, "/"),
			defaultModel: model,
			httpClient:   client,
		}
	default:
		base := p.APIBase
		if base == "" {
			base = "https://generativelanguage.googleapis.com/v1beta"
		}
		model := p.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return &GeminiProvider{
			apiKey:       p.APIKey,
			apiBase:      strings.TrimRight(base, "/"),
			defaultModel: model,
			httpClient:   client,
		}
	}
}

// friendlyHTTPError reduces an error body to something loggable.
func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
