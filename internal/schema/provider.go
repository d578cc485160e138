package schema

import "context"

// GenOptions carries per-call generation parameters.
type GenOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// TextProvider is a single-shot text generation call against an external
// model. Implementations are opaque and non-deterministic collaborators;
// callers must treat the output as untrusted free text and parse it
// strictly (see internal/shared/llmutils).
type TextProvider interface {
	Generate(ctx context.Context, prompt string, opts GenOptions) (string, error)
	DefaultModel() string
}

// Summarizer condenses older turns into replacement summary text. The
// prior summary, when present, is passed in so summaries compose instead
// of discarding earlier context. May fail (timeout, empty output); callers
// must degrade rather than lose turns silently.
type Summarizer interface {
	Summarize(ctx context.Context, turns []Turn, priorSummary string) (string, error)
}
