package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pazarbot/pazarbot/internal/shared/llmutils"
)

// Classification gates fail open: a provider error means "probably
// relevant", so the pipeline keeps going instead of refusing the user over
// a transient outage.

// shouldAnswer reports whether the question is on-topic for the app.
func (a *Assistant) shouldAnswer(ctx context.Context, query, convContext string) bool {
	prompt := fmt.Sprintf(a.prompts.ShouldAnswer, convContext, query)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: topic gate failed, allowing", "err", err)
		return true
	}
	return llmutils.IsYes(out)
}

// needsSearch reports whether the question requires product lookup rather
// than general knowledge.
func (a *Assistant) needsSearch(ctx context.Context, query, convContext string) bool {
	prompt := fmt.Sprintf(a.prompts.NeedsSearch, convContext, query)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: search gate failed, searching anyway", "err", err)
		return true
	}
	return llmutils.IsYes(out)
}

// wantsCatalog reports whether the question should go through the SQL
// catalog path. Only consulted when a catalog is configured.
func (a *Assistant) wantsCatalog(ctx context.Context, query, convContext string) bool {
	prompt := fmt.Sprintf(a.prompts.UseCatalog, convContext, query)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: catalog gate failed, using catalog", "err", err)
		return true
	}
	return llmutils.IsYes(out)
}
