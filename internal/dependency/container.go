// Package dependency wires pazarbot's services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/pazarbot/pazarbot/internal/assistant"
	"github.com/pazarbot/pazarbot/internal/catalog"
	"github.com/pazarbot/pazarbot/internal/config"
	"github.com/pazarbot/pazarbot/internal/memory"
	"github.com/pazarbot/pazarbot/internal/providers"
	"github.com/pazarbot/pazarbot/internal/schema"
	"github.com/pazarbot/pazarbot/internal/search"
	"github.com/pazarbot/pazarbot/internal/server"
)

// Container holds the resolved service singletons. Callers use the typed
// getter methods; they never need to import dig directly.
type Container struct {
	provider  schema.TextProvider
	store     *memory.Store
	sweeper   *memory.Sweeper
	assistant *assistant.Assistant
	server    *server.Server
}

func (c *Container) Provider() schema.TextProvider   { return c.provider }
func (c *Container) Store() *memory.Store            { return c.store }
func (c *Container) Sweeper() *memory.Sweeper        { return c.sweeper }
func (c *Container) Assistant() *assistant.Assistant { return c.assistant }
func (c *Container) Server() *server.Server          { return c.server }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		newPrompts,
		newProvider,
		newGenOptions,
		newSummarizer,
		newCompactionPolicy,
		newStore,
		newSweeper,
		newSearchClient,
		newCatalogService,
		newAssistant,
		newServer,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, fmt.Errorf("wire services: %w", err)
		}
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.TextProvider,
		store *memory.Store,
		sweeper *memory.Sweeper,
		a *assistant.Assistant,
		srv *server.Server,
	) {
		result = &Container{
			provider:  provider,
			store:     store,
			sweeper:   sweeper,
			assistant: a,
			server:    srv,
		}
	})
	return result, err
}

func newPrompts(cfg *config.Config) (assistant.Prompts, error) {
	return assistant.LoadPrompts(cfg.PromptsPath)
}

func newProvider(cfg *config.Config) schema.TextProvider {
	return providers.New(providers.Params{
		Name:    cfg.Provider.Name,
		APIKey:  cfg.Provider.APIKey,
		APIBase: cfg.Provider.APIBase,
		Model:   cfg.Provider.Model,
		Timeout: cfg.ProviderTimeout(),
	})
}

func newGenOptions(cfg *config.Config) schema.GenOptions {
	return schema.GenOptions{
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	}
}

func newSummarizer(provider schema.TextProvider, prompts assistant.Prompts, opts schema.GenOptions) schema.Summarizer {
	return assistant.NewSummarizer(provider, prompts, opts)
}

func newCompactionPolicy(cfg *config.Config, summarizer schema.Summarizer) *memory.CompactionPolicy {
	return memory.NewCompactionPolicy(
		cfg.Memory.WindowSize,
		cfg.Memory.CompactThreshold,
		cfg.Memory.HardCap,
		cfg.SummarizerTimeout(),
		summarizer,
	)
}

func newStore(policy *memory.CompactionPolicy) *memory.Store {
	return memory.NewStore(policy)
}

func newSweeper(cfg *config.Config, store *memory.Store) *memory.Sweeper {
	return memory.NewSweeper(store, cfg.IdleTTL(), cfg.Memory.SweepSchedule)
}

func newSearchClient(cfg *config.Config) *search.Client {
	return search.NewClient(cfg.Search.BaseURL, cfg.Search.Collection, cfg.SearchTimeout())
}

// newCatalogService returns nil when the catalog is disabled; the
// assistant treats a nil catalog as "SQL path off".
func newCatalogService(cfg *config.Config, provider schema.TextProvider, opts schema.GenOptions) (*catalog.Service, error) {
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	db, err := catalog.Open(cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return nil, err
	}
	gen := catalog.NewGenerator(provider, opts)
	return catalog.NewService(gen, catalog.NewExecutor(db), cfg.Catalog.MaxRetries), nil
}

func newAssistant(
	cfg *config.Config,
	provider schema.TextProvider,
	prompts assistant.Prompts,
	opts schema.GenOptions,
	store *memory.Store,
	sc *search.Client,
	catalogSvc *catalog.Service,
) *assistant.Assistant {
	// A typed nil must not become a non-nil interface.
	var cat assistant.Catalog
	if catalogSvc != nil {
		cat = catalogSvc
	}
	return assistant.New(provider, prompts, opts, store, sc, cat, cfg.Search.Limit)
}

func newServer(cfg *config.Config, a *assistant.Assistant, sc *search.Client) *server.Server {
	return server.New(cfg.Server.Host, cfg.Server.Port, a, sc)
}
