// Package retry implements a bounded-retry executor for fallible external
// operations whose input can be regenerated after a failure instead of
// blindly repeated. The concrete use in pazarbot is LLM-generated SQL: a
// failed query's error text is fed back to the model to produce a
// corrected query for the next attempt.
//
// Wrapped operations must be effectively idempotent or read-only. The
// executor offers no rollback for partial side effects, so retrying a
// write that half-succeeded is unsafe by construction.
package retry

import (
	"context"
	"fmt"
)

// Operation runs one attempt with the given input.
type Operation[I, O any] func(ctx context.Context, input I) (O, error)

// Regenerator produces the next attempt's input from the failed input and
// the error it caused. It may itself be an external call and may fail; a
// regeneration failure consumes an attempt.
type Regenerator[I any] func(ctx context.Context, failed I, cause error) (I, error)

// Result is the outcome of a Run plus the number of attempts consumed.
// Attempts is populated on both success and terminal failure.
type Result[O any] struct {
	Value    O
	Attempts int
}

// ExhaustedError is the terminal failure after every attempt failed. The
// caller decides whether to surface it or substitute a fallback; its text
// must never reach the end user verbatim.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Run executes op with the initial input, regenerating the input after
// each failure, for at most maxAttempts attempts.
//
// Attempt 1 uses initial unchanged. On failure with attempts remaining,
// the regenerator produces the next input from the current input and the
// error. If regeneration itself fails, that counts as the next attempt's
// failure and the current input is kept for any further attempts. On
// success Run returns immediately; after maxAttempts consecutive failures
// it returns a terminal *ExhaustedError carrying the last error.
//
// No attempt state survives a Run; nothing is persisted.
func Run[I, O any](ctx context.Context, initial I, maxAttempts int, op Operation[I, O], regen Regenerator[I]) (Result[O], error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	input := initial
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result[O]{Attempts: attempt - 1}, err
		}

		if attempt > 1 && regen != nil {
			next, err := regen(ctx, input, lastErr)
			if err != nil {
				lastErr = fmt.Errorf("regenerate input: %w", err)
				continue
			}
			input = next
		}

		out, err := op(ctx, input)
		if err == nil {
			return Result[O]{Value: out, Attempts: attempt}, nil
		}
		lastErr = err
	}

	return Result[O]{Attempts: maxAttempts}, &ExhaustedError{Attempts: maxAttempts, LastErr: lastErr}
}
