package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
	"github.com/pazarbot/pazarbot/internal/shared/llmutils"
)

const (
	minRelevanceScore = 6
	maxScoredProducts = 15
	fallbackProducts  = 12
)

// Organized is the product grouping handed to response generation.
type Organized struct {
	Primary      []schema.Product
	Secondary    []schema.Product
	ResponseType string
	Strategy     string
}

// productLines renders products as one indexed line each for model input.
func productLines(products []schema.Product, withCategory bool) string {
	var sb strings.Builder
	for i, p := range products {
		fmt.Fprintf(&sb, "%d: %s | %.2f TL | %s", i, p.Name, p.Price, p.MarketName)
		if withCategory && p.MainCategory != "" {
			fmt.Fprintf(&sb, " | Category: %s", p.MainCategory)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// filterAndScore asks the model to pick and score the products relevant to
// the query. Scores below minRelevanceScore are dropped, the rest sorted
// by score, at most maxScoredProducts kept. Malformed output falls back to
// the first fallbackProducts products.
func (a *Assistant) filterAndScore(ctx context.Context, query string, products []schema.Product, convContext string) []schema.Product {
	if len(products) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(a.prompts.FilterScore, query, convContext, productLines(products, true))
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: scoring failed, using head of results", "err", err)
		return head(products, fallbackProducts)
	}

	var scored []struct {
		Index  int    `json:"index"`
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	}
	if err := llmutils.ExtractJSONArray(out, &scored); err != nil {
		slog.Warn("assistant: malformed scoring output, using head of results", "err", err)
		return head(products, fallbackProducts)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	var relevant []schema.Product
	for _, s := range scored {
		if s.Index >= 0 && s.Index < len(products) && s.Score >= minRelevanceScore {
			relevant = append(relevant, products[s.Index])
		}
	}
	slog.Debug("assistant: scored products", "kept", len(relevant), "of", len(products))
	return head(relevant, maxScoredProducts)
}

// organize asks the model to group the scored products into primary and
// secondary sets with a response type. Any parse failure or an empty
// primary set degrades to a simple head-of-list grouping.
func (a *Assistant) organize(ctx context.Context, query string, products []schema.Product, convContext string) Organized {
	if len(products) == 0 {
		return Organized{ResponseType: "no_results"}
	}

	fallback := func() Organized {
		o := Organized{
			Primary:      head(products, 6),
			ResponseType: "simple_answer",
			Strategy:     "by_relevance",
		}
		if len(products) > 6 {
			o.Secondary = head(products[6:], 3)
		}
		return o
	}

	prompt := fmt.Sprintf(a.prompts.Organize, query, convContext, productLines(products, false))
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: organization failed, using fallback grouping", "err", err)
		return fallback()
	}

	var plan struct {
		ResponseType string `json:"response_type"`
		Primary      []int  `json:"primary_products"`
		Secondary    []int  `json:"secondary_products"`
		Strategy     string `json:"organization_strategy"`
	}
	if err := llmutils.ExtractJSONObject(out, &plan); err != nil {
		slog.Warn("assistant: malformed organization output, using fallback grouping", "err", err)
		return fallback()
	}

	o := Organized{
		Primary:      pick(products, plan.Primary),
		Secondary:    pick(products, plan.Secondary),
		ResponseType: plan.ResponseType,
		Strategy:     plan.Strategy,
	}
	if o.ResponseType == "" {
		o.ResponseType = "simple_answer"
	}
	if o.Strategy == "" {
		o.Strategy = "by_relevance"
	}
	if len(o.Primary) == 0 {
		slog.Debug("assistant: organization selected nothing, using fallback grouping")
		return fallback()
	}
	return o
}

// refineSelection narrows catalog rows to the ones matching the user's
// intent via a model-chosen index list. An unparseable answer keeps the
// first rows up to the scored-product cap instead of dropping everything.
func (a *Assistant) refineSelection(ctx context.Context, query string, rows []schema.Product, convContext string) []schema.Product {
	if len(rows) == 0 {
		return rows
	}

	prompt := fmt.Sprintf(a.prompts.Refine, query, convContext, productLines(rows, true))
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: refinement failed, keeping candidates", "err", err)
		return head(rows, maxScoredProducts)
	}

	indices, err := llmutils.ExtractIndexList(out, len(rows))
	if err != nil || len(indices) == 0 {
		slog.Warn("assistant: malformed refinement output, keeping candidates", "err", err)
		return head(rows, maxScoredProducts)
	}
	return pick(rows, indices)
}

func head(products []schema.Product, n int) []schema.Product {
	if len(products) <= n {
		return products
	}
	return products[:n]
}

// pick copies out the rows at valid indices, ignoring out-of-range ones.
func pick(products []schema.Product, indices []int) []schema.Product {
	var out []schema.Product
	for _, i := range indices {
		if i >= 0 && i < len(products) {
			out = append(out, products[i])
		}
	}
	return out
}
