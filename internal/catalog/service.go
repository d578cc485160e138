package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pazarbot/pazarbot/internal/retry"
	"github.com/pazarbot/pazarbot/internal/schema"
	"github.com/pazarbot/pazarbot/internal/shared/llmutils"
)

// Service ties query generation, execution, and bounded retry together.
type Service struct {
	gen         *Generator
	exec        *Executor
	maxAttempts int
}

// NewService creates a Service. maxAttempts defaults to 2, matching the
// catalog's historical retry bound.
func NewService(gen *Generator, exec *Executor, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = 2
	}
	return &Service{gen: gen, exec: exec, maxAttempts: maxAttempts}
}

// CandidateProducts generates and executes a candidate query for question,
// regenerating the query from the database's error text on failure.
// Returns the rows and the attempts consumed; on exhaustion the error is a
// *retry.ExhaustedError for the caller to translate into a user-facing
// message.
func (s *Service) CandidateProducts(ctx context.Context, question, convContext string) ([]schema.Product, int, error) {
	initial, err := s.gen.Generate(ctx, question, convContext)
	if err != nil {
		return nil, 0, fmt.Errorf("generate query: %w", err)
	}
	slog.Debug("catalog: candidate query", "sql", llmutils.Truncate(initial, 200))

	res, err := retry.Run(ctx, initial, s.maxAttempts,
		func(ctx context.Context, query string) ([]schema.Product, error) {
			return s.exec.Query(ctx, query)
		},
		func(ctx context.Context, failed string, cause error) (string, error) {
			slog.Warn("catalog: query failed, regenerating", "err", cause)
			return s.gen.Regenerate(ctx, question, failed, cause.Error(), convContext)
		},
	)
	if err != nil {
		return nil, res.Attempts, err
	}

	slog.Info("catalog: query succeeded", "rows", len(res.Value), "attempts", res.Attempts)
	return res.Value, res.Attempts, nil
}
