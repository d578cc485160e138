package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// Summarizer condenses compacted-away turns into a running Turkish summary
// through the text provider. Failures propagate to the caller, which
// degrades to trimming rather than inventing a summary.
type Summarizer struct {
	provider schema.TextProvider
	prompts  Prompts
	opts     schema.GenOptions
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(provider schema.TextProvider, prompts Prompts, opts schema.GenOptions) *Summarizer {
	return &Summarizer{provider: provider, prompts: prompts, opts: opts}
}

// Summarize folds priorSummary and the given turns into one new summary.
func (s *Summarizer) Summarize(ctx context.Context, turns []schema.Turn, priorSummary string) (string, error) {
	if len(turns) == 0 {
		return priorSummary, nil
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, strings.ToUpper(string(t.Role))+": "+t.Content)
	}

	prompt := fmt.Sprintf(s.prompts.Summarize, priorSummary, strings.Join(lines, "\n"))
	out, err := s.provider.Generate(ctx, prompt, s.opts)
	if err != nil {
		return "", fmt.Errorf("summarize conversation: %w", err)
	}
	return strings.TrimSpace(out), nil
}
