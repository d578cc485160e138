package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pazarbot/pazarbot/internal/memory"
	"github.com/pazarbot/pazarbot/internal/retry"
	"github.com/pazarbot/pazarbot/internal/schema"
)

// kbSupplementThreshold is the search-result count under which the
// enhanced path pads results from the raw knowledge base.
const kbSupplementThreshold = 10

// kbSupplementLimit bounds how many knowledge-base products are fetched
// for supplementation.
const kbSupplementLimit = 200

// Searcher is the slice of the search client the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, term, collection string, limit int) []schema.Product
	KnowledgeBase(ctx context.Context, collection string, limit int) []schema.Product
	DefaultCollectionName() string
}

// Catalog is the slice of the SQL catalog service the pipeline needs.
type Catalog interface {
	CandidateProducts(ctx context.Context, question, convContext string) ([]schema.Product, int, error)
}

// Assistant runs the conversational pipeline. One instance serves all
// users; per-user state lives in the memory store.
type Assistant struct {
	provider    schema.TextProvider
	prompts     Prompts
	opts        schema.GenOptions
	store       *memory.Store
	search      Searcher
	catalog     Catalog // nil when the SQL catalog is disabled
	searchLimit int
}

// New creates an Assistant. catalog may be nil; searchLimit defaults
// to 20.
func New(provider schema.TextProvider, prompts Prompts, opts schema.GenOptions, store *memory.Store, search Searcher, catalog Catalog, searchLimit int) *Assistant {
	if searchLimit <= 0 {
		searchLimit = 20
	}
	return &Assistant{
		provider:    provider,
		prompts:     prompts,
		opts:        opts,
		store:       store,
		search:      search,
		catalog:     catalog,
		searchLimit: searchLimit,
	}
}

// Store exposes the memory store for session management endpoints.
func (a *Assistant) Store() *memory.Store { return a.store }

// Process answers one user message. The user turn is recorded first so
// the rendered context the pipeline sees already includes it; the reply
// is recorded after generation. Errors never escape: every failure path
// degrades to a Turkish message.
func (a *Assistant) Process(ctx context.Context, userID, message string) string {
	return a.process(ctx, userID, message, false)
}

// ProcessEnhanced is Process with knowledge-base supplementation: when
// semantic search returns fewer than kbSupplementThreshold products, raw
// collection pages are filtered by the search terms and appended.
func (a *Assistant) ProcessEnhanced(ctx context.Context, userID, message string) string {
	return a.process(ctx, userID, message, true)
}

func (a *Assistant) process(ctx context.Context, userID, message string, enhanced bool) string {
	a.store.Append(ctx, userID, schema.RoleUser, message)
	convContext := memory.Render(a.store.State(userID))

	reply := a.answer(ctx, message, convContext, enhanced)

	a.store.Append(ctx, userID, schema.RoleAssistant, reply)
	return reply
}

func (a *Assistant) answer(ctx context.Context, message, convContext string, enhanced bool) string {
	if !a.shouldAnswer(ctx, message, convContext) {
		return RefusalMessage
	}

	if a.catalog != nil && a.wantsCatalog(ctx, message, convContext) {
		return a.answerFromCatalog(ctx, message, convContext)
	}

	if !a.needsSearch(ctx, message, convContext) {
		return a.answerGeneral(ctx, message, convContext)
	}

	terms := a.extractTerms(ctx, message, convContext)
	if len(terms) == 0 {
		return NoResultsMessage
	}

	products := a.searchAll(ctx, terms)
	if enhanced && len(products) < kbSupplementThreshold {
		products = a.supplementFromKnowledgeBase(ctx, products, terms)
	}
	if len(products) == 0 {
		return NoResultsMessage
	}

	relevant := a.filterAndScore(ctx, message, products, convContext)
	organized := a.organize(ctx, message, relevant, convContext)
	return a.respondWithProducts(ctx, message, organized, convContext)
}

// searchAll fans the term list out over the search backend concurrently
// and merges results, deduplicating by product key. Order is stable per
// term; term order is preserved in the merge.
func (a *Assistant) searchAll(ctx context.Context, terms []string) []schema.Product {
	results := make([][]schema.Product, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		g.Go(func() error {
			results[i] = a.search.Search(gctx, term, "", a.searchLimit)
			return nil
		})
	}
	// Search never returns errors, only empty slices.
	_ = g.Wait()

	seen := map[string]bool{}
	var merged []schema.Product
	for _, batch := range results {
		for _, p := range batch {
			if key := p.Key(); !seen[key] {
				seen[key] = true
				merged = append(merged, p)
			}
		}
	}
	slog.Debug("assistant: search merged", "terms", len(terms), "unique", len(merged))
	return merged
}

// supplementFromKnowledgeBase appends raw collection products whose names
// contain any search term, still deduplicated against what search found.
func (a *Assistant) supplementFromKnowledgeBase(ctx context.Context, products []schema.Product, terms []string) []schema.Product {
	slog.Debug("assistant: supplementing thin results from knowledge base", "have", len(products))
	kb := a.search.KnowledgeBase(ctx, a.search.DefaultCollectionName(), kbSupplementLimit)

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		seen[p.Key()] = true
	}
	for _, p := range kb {
		name := strings.ToLower(p.Name)
		for _, term := range terms {
			if strings.Contains(name, strings.ToLower(term)) {
				if key := p.Key(); !seen[key] {
					seen[key] = true
					products = append(products, p)
				}
				break
			}
		}
	}
	return products
}

// answerFromCatalog is the SQL path: rewrite the question into a
// self-contained one, fetch broad candidates with bounded retry, refine
// them, and phrase the reply. Exhausted retries become an apology, not an
// error.
func (a *Assistant) answerFromCatalog(ctx context.Context, message, convContext string) string {
	question := a.rewriteQuery(ctx, message, convContext)

	rows, attempts, err := a.catalog.CandidateProducts(ctx, question, convContext)
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			slog.Warn("assistant: catalog retries exhausted", "attempts", exhausted.Attempts, "err", exhausted.LastErr)
			return a.apologyFromError(ctx, message, exhausted.LastErr)
		}
		slog.Error("assistant: catalog path failed", "err", err)
		return a.apologyFromError(ctx, message, err)
	}
	if attempts > 1 {
		slog.Info("assistant: catalog query recovered", "attempts", attempts)
	}
	if len(rows) == 0 {
		return NoMatchMessage
	}

	refined := a.refineSelection(ctx, message, rows, convContext)
	return a.catalogReply(ctx, message, refined, convContext)
}

// Warmup primes the provider with a trivial generation so the first user
// request does not pay connection setup. Failures are logged and ignored.
func (a *Assistant) Warmup(ctx context.Context) {
	if _, err := a.provider.Generate(ctx, "ping", a.opts); err != nil {
		slog.Debug("assistant: warmup failed", "err", err)
	}
}
