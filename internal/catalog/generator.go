package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
	"github.com/pazarbot/pazarbot/internal/shared/llmutils"
)

// Generator produces candidate SQL through the model. Queries are broad on
// purpose: they fetch loosely matching rows so a second model pass can
// pick the exact ones later.
type Generator struct {
	provider schema.TextProvider
	opts     schema.GenOptions
}

// NewGenerator creates a Generator using the provider's default model.
func NewGenerator(provider schema.TextProvider, opts schema.GenOptions) *Generator {
	return &Generator{provider: provider, opts: opts}
}

const generatePrompt = `You are a SQL assistant. You will not answer the user's question directly.

Instead, your task is to generate a SQL query that fetches a broad list of candidate products related to the query, so that a second model can later decide which ones match exactly.

Instructions:
- Use a broad LIKE or ILIKE filter, case insensitive.
- Do NOT optimize for price, do NOT use LIMIT, do NOT make assumptions.
- Select product name, price, market_name, and product_link.
- Focus only on finding all products whose names loosely match what's being asked.
- If there are measures in the user input, consider them too.

An example query:
SELECT name, price, market_name, product_link
FROM all_products
WHERE LOWER(name) LIKE '%%elma%%'
ORDER BY price ASC

Table schema:
%s

The conversation so far:
%s

User question: %s

Now return only the SQL query (no explanation):`

// Generate asks the model for a candidate query. The output is
// fence-stripped and must be a SELECT.
func (g *Generator) Generate(ctx context.Context, question, convContext string) (string, error) {
	prompt := fmt.Sprintf(generatePrompt, Schema, convContext, question)
	return g.sqlFromModel(ctx, prompt)
}

const regeneratePrompt = `You are a SQL assistant.

A SQL query was generated to fetch a broad list of candidate products for a user question, but it failed to execute. Find out what went wrong and generate an alternative query that avoids the error.

Details:
- User question: %q

- The conversation so far:
%s

- Failed SQL query:
%s

- Error message:
%s

Your task:
Regenerate a correct SQL SELECT query that avoids this error.
Select product name, price, market_name, and product_link from all_products.
Do not include markdown, explanations, or formatting, just the corrected SQL.

The table schema:
%s

Only output a single valid SQL query that should fix the issue.`

// Regenerate asks the model for a corrected query given the failed one and
// the database's raw error text.
func (g *Generator) Regenerate(ctx context.Context, question, failedSQL, errText, convContext string) (string, error) {
	prompt := fmt.Sprintf(regeneratePrompt, question, convContext, failedSQL, errText, Schema)
	return g.sqlFromModel(ctx, prompt)
}

func (g *Generator) sqlFromModel(ctx context.Context, prompt string) (string, error) {
	out, err := g.provider.Generate(ctx, prompt, g.opts)
	if err != nil {
		return "", err
	}
	query := llmutils.StripFences(out)
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return "", fmt.Errorf("%w: generated query is not a SELECT: %s",
			llmutils.ErrMalformedOutput, llmutils.Truncate(query, 80))
	}
	return query, nil
}
