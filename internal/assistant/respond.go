package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// formatProductList renders products in the markdown layout the response
// prompts require verbatim: bold name, market, price, and a "Ürüne git"
// link when one exists.
func formatProductList(products []schema.Product) string {
	var sb strings.Builder
	for _, p := range products {
		market := p.MarketName
		if market == "" {
			market = "bilinmeyen market"
		}
		fmt.Fprintf(&sb, "* **%s** - %s - %.2f TL\n", p.Name, market, p.Price)
		if p.ProductLink != "" {
			fmt.Fprintf(&sb, "[Ürüne git](%s)\n", p.ProductLink)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// respondWithProducts generates the final Turkish answer from organized
// products. A provider failure degrades to a one-line answer naming the
// cheapest primary product so the user still gets something useful.
func (a *Assistant) respondWithProducts(ctx context.Context, query string, organized Organized, convContext string) string {
	if len(organized.Primary) == 0 {
		return NoMatchMessage
	}

	primaryText := formatProductList(organized.Primary)
	secondaryText := formatProductList(head(organized.Secondary, 3))

	prompt := fmt.Sprintf(a.prompts.Respond, query, convContext, organized.ResponseType, primaryText, secondaryText)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: response generation failed, using cheapest fallback", "err", err)
		return cheapestLine(organized.Primary)
	}
	return strings.TrimSpace(out)
}

// cheapestLine is the degraded response: one product card for the
// cheapest option.
func cheapestLine(products []schema.Product) string {
	if len(products) == 0 {
		return GenericErrorMsg
	}
	cheapest := products[0]
	for _, p := range products[1:] {
		if p.Price < cheapest.Price {
			cheapest = p
		}
	}
	market := cheapest.MarketName
	if market == "" {
		market = "bilinmeyen market"
	}
	return fmt.Sprintf("* **%s** - %s - %.2f TL\n[Ürüne git](%s)", cheapest.Name, market, cheapest.Price, cheapest.ProductLink)
}

// catalogReply generates the Turkish answer for refined catalog rows.
func (a *Assistant) catalogReply(ctx context.Context, query string, rows []schema.Product, convContext string) string {
	if len(rows) == 0 {
		return NoMatchMessage
	}
	prompt := fmt.Sprintf(a.prompts.CatalogReply, query, convContext, productLines(rows, true))
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: catalog reply failed, using cheapest fallback", "err", err)
		return cheapestLine(rows)
	}
	return strings.TrimSpace(out)
}

// answerGeneral handles questions that need no product data.
func (a *Assistant) answerGeneral(ctx context.Context, query, convContext string) string {
	prompt := fmt.Sprintf(a.prompts.General, query, convContext)
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: general answer failed", "err", err)
		return GeneralErrorMsg
	}
	return strings.TrimSpace(out)
}

// apologyFromError turns an internal failure into a polite Turkish message
// without leaking SQL or stack detail. If even the apology call fails, a
// fixed message is returned.
func (a *Assistant) apologyFromError(ctx context.Context, query string, cause error) string {
	prompt := fmt.Sprintf(a.prompts.ErrorApology, query, cause.Error())
	out, err := a.provider.Generate(ctx, prompt, a.opts)
	if err != nil {
		slog.Warn("assistant: apology generation failed", "err", err)
		return GenericErrorMsg
	}
	return strings.TrimSpace(out)
}
