package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pazarbot/pazarbot/internal/shared/llmutils"
)

// productKeywords is the heuristic vocabulary used when the model fails to
// produce a parseable term list.
var productKeywords = []string{
	"elma", "muz", "süt", "ekmek", "tavuk", "et", "sebze", "meyve",
	"domates", "salatalık", "patates", "soğan", "biber", "havuç",
	"peynir", "yoğurt", "tereyağ", "makarna", "pirinç", "bulgur",
	"çay", "kahve", "şeker", "tuz", "yağ", "un", "balık", "kıyma",
	"fasulye", "nohut", "mercimek", "pilic", "dana", "kuzu",
}

// referenceWords mark follow-up questions that point back at products
// already in the conversation.
var referenceWords = []string{"bu", "bunlar", "şu", "o"}

// extractTerms asks the model for a JSON array of product names, falling
// back to keyword scanning when the output is malformed or empty.
func (a *Assistant) extractTerms(ctx context.Context, query, convContext string) []string {
	prompt := fmt.Sprintf(a.prompts.ExtractTerms, query, convContext)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: term extraction failed", "err", err)
		return heuristicTerms(query, convContext)
	}

	var terms []string
	if err := llmutils.ExtractJSONArray(out, &terms); err != nil || len(terms) == 0 {
		slog.Debug("assistant: falling back to heuristic extraction", "err", err)
		return heuristicTerms(query, convContext)
	}
	slog.Debug("assistant: extracted terms", "terms", terms)
	return terms
}

// heuristicTerms scans the query (and, for follow-up phrasing, the
// context) for known product words. A price question with no recognizable
// product still gets a broad "meyve" search rather than nothing.
func heuristicTerms(query, convContext string) []string {
	queryLower := strings.ToLower(query)
	seen := map[string]bool{}
	var found []string

	for _, p := range productKeywords {
		if strings.Contains(queryLower, p) && !seen[p] {
			seen[p] = true
			found = append(found, p)
		}
	}

	if convContext != "" && containsAnyWord(queryLower, referenceWords) {
		contextLower := strings.ToLower(convContext)
		for _, p := range productKeywords {
			if strings.Contains(contextLower, p) && !seen[p] {
				seen[p] = true
				found = append(found, p)
			}
		}
	}

	if len(found) > 0 {
		return found
	}
	for _, w := range []string{"fiyat", "ne kadar", "kaç para", "ürün"} {
		if strings.Contains(queryLower, w) {
			return []string{"meyve"}
		}
	}
	return nil
}

func containsAnyWord(s string, words []string) bool {
	fields := strings.Fields(s)
	for _, f := range fields {
		f = strings.Trim(f, "?!.,")
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

// rewriteQuery grounds a follow-up question in the conversation so the
// catalog generator sees a self-contained question. On failure the
// original query is used as-is.
func (a *Assistant) rewriteQuery(ctx context.Context, query, convContext string) string {
	if convContext == "" {
		return query
	}
	prompt := fmt.Sprintf(a.prompts.RewriteQuery, convContext, query)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil || strings.TrimSpace(out) == "" {
		slog.Warn("assistant: query rewrite failed, using original", "err", err)
		return query
	}
	return strings.TrimSpace(out)
}
