package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pazarbot/pazarbot/internal/memory"
	"github.com/pazarbot/pazarbot/internal/retry"
	"github.com/pazarbot/pazarbot/internal/schema"
)

// scriptedProvider returns canned responses in call order and records the
// prompts it saw.
type scriptedProvider struct {
	responses []string
	prompts   []string
	err       error
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, _ schema.GenOptions) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.prompts) > len(p.responses) {
		return "", errors.New("script exhausted")
	}
	return p.responses[len(p.prompts)-1], nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

// stubSearcher serves a fixed product set per term.
type stubSearcher struct {
	byTerm map[string][]schema.Product
	kb     []schema.Product
}

func (s *stubSearcher) Search(_ context.Context, term, _ string, _ int) []schema.Product {
	return s.byTerm[term]
}

func (s *stubSearcher) KnowledgeBase(_ context.Context, _ string, _ int) []schema.Product {
	return s.kb
}

func (s *stubSearcher) DefaultCollectionName() string { return "SupermarketProducts3" }

// stubCatalog returns fixed rows or a fixed error.
type stubCatalog struct {
	rows     []schema.Product
	attempts int
	err      error
	question string
}

func (c *stubCatalog) CandidateProducts(_ context.Context, question, _ string) ([]schema.Product, int, error) {
	c.question = question
	return c.rows, c.attempts, c.err
}

func newTestAssistant(p *scriptedProvider, search Searcher, cat Catalog) *Assistant {
	return New(p, DefaultPrompts(), schema.GenOptions{}, memory.NewStore(nil), search, cat, 20)
}

func TestProcess_OffTopicRefused(t *testing.T) {
	p := &scriptedProvider{responses: []string{"NO"}}
	a := newTestAssistant(p, &stubSearcher{}, nil)

	reply := a.Process(context.Background(), "u1", "bitcoin alayım mı?")
	if reply != RefusalMessage {
		t.Errorf("expected refusal, got %q", reply)
	}
	if len(p.prompts) != 1 {
		t.Errorf("pipeline should stop at the topic gate, made %d calls", len(p.prompts))
	}
}

func TestProcess_GeneralQuestion(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		"YES", // on topic
		"NO",  // no search needed
		"Elmayı buzdolabında saklayın.",
	}}
	a := newTestAssistant(p, &stubSearcher{}, nil)

	reply := a.Process(context.Background(), "u1", "elma nasıl saklanır?")
	if reply != "Elmayı buzdolabında saklayın." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestProcess_SearchPipeline(t *testing.T) {
	search := &stubSearcher{byTerm: map[string][]schema.Product{
		"muz": {
			{Name: "Muz İthal", Price: 49, MarketName: "Migros", ProductLink: "https://m/1"},
			{Name: "Muz Yerli", Price: 39, MarketName: "A101", ProductLink: "https://a/2"},
		},
	}}
	p := &scriptedProvider{responses: []string{
		"YES",        // on topic
		"YES",        // needs search
		`["muz"]`,    // terms
		`[{"index": 1, "score": 9, "reason": "cheap"}, {"index": 0, "score": 7, "reason": "alt"}]`,
		`{"response_type": "price_comparison", "primary_products": [0, 1], "secondary_products": [], "organization_strategy": "by_price"}`,
		"En ucuz muz A101'de 39 TL.",
	}}
	a := newTestAssistant(p, search, nil)

	reply := a.Process(context.Background(), "u1", "muz fiyatları ne kadar?")
	if reply != "En ucuz muz A101'de 39 TL." {
		t.Errorf("unexpected reply %q", reply)
	}

	// Scored order (index 1 first) flows into the organize prompt.
	organizePrompt := p.prompts[4]
	if !strings.Contains(organizePrompt, "0: Muz Yerli") {
		t.Errorf("expected score-sorted products in organize prompt:\n%s", organizePrompt)
	}

	// Both turns recorded, user before assistant.
	state := a.Store().State("u1")
	if len(state.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(state.Turns))
	}
	if state.Turns[0].Role != schema.RoleUser || state.Turns[1].Role != schema.RoleAssistant {
		t.Errorf("unexpected roles %v %v", state.Turns[0].Role, state.Turns[1].Role)
	}
	if state.Turns[1].Content != reply {
		t.Errorf("assistant turn should hold the reply")
	}
}

func TestProcess_ContextIncludesCurrentUserTurn(t *testing.T) {
	p := &scriptedProvider{responses: []string{"NO"}}
	a := newTestAssistant(p, &stubSearcher{}, nil)

	a.Process(context.Background(), "u1", "hava nasıl?")
	if !strings.Contains(p.prompts[0], "USER: hava nasıl?") {
		t.Errorf("topic gate should see the just-appended user turn:\n%s", p.prompts[0])
	}
}

func TestProcess_NoSearchResults(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		"YES",
		"YES",
		`["muz"]`,
	}}
	a := newTestAssistant(p, &stubSearcher{byTerm: map[string][]schema.Product{}}, nil)

	reply := a.Process(context.Background(), "u1", "muz ne kadar?")
	if reply != NoResultsMessage {
		t.Errorf("expected no-results message, got %q", reply)
	}
}

func TestProcess_ProviderDownDegradesToFallbacks(t *testing.T) {
	search := &stubSearcher{byTerm: map[string][]schema.Product{
		"muz": {{Name: "Muz Yerli", Price: 39, MarketName: "A101", ProductLink: "https://a/2"}},
	}}
	p := &scriptedProvider{err: errors.New("provider down")}
	a := newTestAssistant(p, search, nil)

	// Gates fail open, extraction falls back to heuristics, scoring and
	// organization fall back to head-of-list, and the final response
	// degrades to the cheapest-product line.
	reply := a.Process(context.Background(), "u1", "muz fiyatı ne kadar?")
	if !strings.Contains(reply, "Muz Yerli") || !strings.Contains(reply, "39") {
		t.Errorf("expected cheapest-product fallback, got %q", reply)
	}
}

func TestProcessEnhanced_SupplementsFromKnowledgeBase(t *testing.T) {
	search := &stubSearcher{
		byTerm: map[string][]schema.Product{
			"muz": {{Name: "Muz İthal", Price: 49, MarketName: "Migros"}},
		},
		kb: []schema.Product{
			{Name: "Muz Yerli 1 kg", Price: 39, MarketName: "A101"},
			{Name: "Elma Golden", Price: 30, MarketName: "A101"},
			{Name: "Muz İthal", Price: 49, MarketName: "Migros"}, // duplicate
		},
	}
	p := &scriptedProvider{responses: []string{
		"YES",
		"YES",
		`["muz"]`,
		`[{"index": 0, "score": 8}, {"index": 1, "score": 8}]`,
		`{"response_type": "simple_answer", "primary_products": [0, 1]}`,
		"İki muz seçeneği var.",
	}}
	a := newTestAssistant(p, search, nil)

	reply := a.ProcessEnhanced(context.Background(), "u1", "muz ne kadar?")
	if reply != "İki muz seçeneği var." {
		t.Errorf("unexpected reply %q", reply)
	}

	// The scoring prompt sees search result plus the KB muz, but not the
	// elma or the duplicate.
	scoringPrompt := p.prompts[3]
	if !strings.Contains(scoringPrompt, "Muz Yerli 1 kg") {
		t.Errorf("expected knowledge-base supplement in scoring prompt:\n%s", scoringPrompt)
	}
	if strings.Contains(scoringPrompt, "Elma Golden") {
		t.Errorf("non-matching KB product leaked into scoring prompt:\n%s", scoringPrompt)
	}
	if strings.Count(scoringPrompt, "Muz İthal") != 1 {
		t.Errorf("duplicate product not deduplicated:\n%s", scoringPrompt)
	}
}

func TestProcess_CatalogPath(t *testing.T) {
	cat := &stubCatalog{
		rows: []schema.Product{
			{Name: "Elma Golden 1 kg", Price: 29.9, MarketName: "A101", ProductLink: "https://a/2"},
			{Name: "Elma Starking 1 kg", Price: 32.5, MarketName: "Migros", ProductLink: "https://m/1"},
		},
		attempts: 1,
	}
	p := &scriptedProvider{responses: []string{
		"YES",                  // on topic
		"YES",                  // catalog path
		"elma fiyatı ne kadar", // rewritten question
		"[0]",                  // refined row selection
		"En ucuz elma A101'de 29.90 TL. [Ürüne git](https://a/2)",
	}}
	a := newTestAssistant(p, &stubSearcher{}, cat)

	reply := a.Process(context.Background(), "u1", "elma fiyatı nedir?")
	if !strings.Contains(reply, "29.90") {
		t.Errorf("unexpected reply %q", reply)
	}
	if cat.question != "elma fiyatı ne kadar" {
		t.Errorf("catalog should receive the rewritten question, got %q", cat.question)
	}
}

func TestProcess_CatalogExhaustedBecomesApology(t *testing.T) {
	cat := &stubCatalog{
		attempts: 2,
		err: &retry.ExhaustedError{
			Attempts: 2,
			LastErr:  errors.New(`column "prise" does not exist`),
		},
	}
	p := &scriptedProvider{responses: []string{
		"YES",        // on topic
		"YES",        // catalog path
		"elma kaça?", // rewritten question
		"Üzgünüm, bir sorun oluştu. Lütfen sorunuzu farklı şekilde sormayı deneyin.",
	}}
	a := newTestAssistant(p, &stubSearcher{}, cat)

	reply := a.Process(context.Background(), "u1", "elma kaça?")
	if !strings.Contains(reply, "Üzgünüm") {
		t.Errorf("expected apology, got %q", reply)
	}
	// The apology prompt carries the raw DB error for the model, but the
	// user-facing reply is whatever the model produced.
	apologyPrompt := p.prompts[len(p.prompts)-1]
	if !strings.Contains(apologyPrompt, "prise") {
		t.Errorf("apology prompt should include the cause:\n%s", apologyPrompt)
	}
}

func TestProcess_CatalogEmptyRows(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		"YES", "YES", "elma kaça?",
	}}
	a := newTestAssistant(p, &stubSearcher{}, &stubCatalog{attempts: 1})

	reply := a.Process(context.Background(), "u1", "elma kaça?")
	if reply != NoMatchMessage {
		t.Errorf("expected no-match message, got %q", reply)
	}
}
