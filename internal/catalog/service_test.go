package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/pazarbot/pazarbot/internal/retry"
	"github.com/pazarbot/pazarbot/internal/schema"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) Generate(_ context.Context, _ string, _ schema.GenOptions) (string, error) {
	if p.calls >= len(p.responses) {
		return "", errors.New("script exhausted")
	}
	out := p.responses[p.calls]
	p.calls++
	return out, nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

func TestService_FirstQuerySucceeds(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"SELECT name, price, market_name, product_link FROM all_products WHERE LOWER(name) LIKE '%elma%'",
	}}
	svc := NewService(NewGenerator(provider, schema.GenOptions{}), NewExecutor(openTestDB(t)), 2)

	rows, attempts, err := svc.CandidateProducts(context.Background(), "elma fiyatı nedir?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}

func TestService_RegeneratedQuerySucceeds(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"SELECT missing_column FROM all_products",
		"```sql\nSELECT name, price, market_name FROM all_products WHERE LOWER(name) LIKE '%muz%'\n```",
	}}
	svc := NewService(NewGenerator(provider, schema.GenOptions{}), NewExecutor(openTestDB(t)), 2)

	rows, attempts, err := svc.CandidateProducts(context.Background(), "muz ne kadar?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(rows))
	}
	if provider.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", provider.calls)
	}
}

func TestService_ExhaustedRetries(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"SELECT missing_column FROM all_products",
		"SELECT still_missing FROM all_products",
	}}
	svc := NewService(NewGenerator(provider, schema.GenOptions{}), NewExecutor(openTestDB(t)), 2)

	_, attempts, err := svc.CandidateProducts(context.Background(), "muz ne kadar?", "")
	if err == nil {
		t.Fatal("expected terminal error")
	}
	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *retry.ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != 2 || attempts != 2 {
		t.Errorf("expected 2 attempts, got %d / %d", exhausted.Attempts, attempts)
	}
}

func TestService_NonSelectOutputRejected(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"DROP TABLE all_products",
	}}
	svc := NewService(NewGenerator(provider, schema.GenOptions{}), NewExecutor(openTestDB(t)), 2)

	_, _, err := svc.CandidateProducts(context.Background(), "elma?", "")
	if err == nil {
		t.Fatal("expected error for non-SELECT generation")
	}
}
