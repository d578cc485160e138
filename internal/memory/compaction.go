package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// CompactionPolicy decides when a conversation has grown past its
// threshold and folds older turns into a summary, keeping a verbatim
// window of recent turns. When the summarizer is unreachable it degrades
// to hard-cap trimming so memory stays bounded either way; the loss is
// then explicit and logged, never silent below the cap.
type CompactionPolicy struct {
	WindowSize       int           // turns kept verbatim after compaction
	CompactThreshold int           // turn count that triggers compaction
	HardCap          int           // absolute bound when the summarizer fails
	Timeout          time.Duration // per summarizer call

	summarizer schema.Summarizer
}

// NewCompactionPolicy normalizes the bounds (window ≥ 1, threshold ≥
// window, hard cap ≥ threshold) and applies a 30s default summarizer
// timeout.
func NewCompactionPolicy(window, threshold, hardCap int, timeout time.Duration, summarizer schema.Summarizer) *CompactionPolicy {
	if window < 1 {
		window = 1
	}
	if threshold < window {
		threshold = window
	}
	if hardCap < threshold {
		hardCap = threshold
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CompactionPolicy{
		WindowSize:       window,
		CompactThreshold: threshold,
		HardCap:          hardCap,
		Timeout:          timeout,
		summarizer:       summarizer,
	}
}

// compact runs after every append, under the conversation lock. It either
// leaves the log alone (at or below threshold), replaces older turns with
// a composed summary, or, when summarization fails, enforces only the
// hard cap.
func (p *CompactionPolicy) compact(ctx context.Context, c *conversation) {
	if len(c.turns) <= p.CompactThreshold {
		return
	}

	cut := len(c.turns) - p.WindowSize
	older := c.turns[:cut]
	recent := c.turns[cut:]

	if p.summarizer == nil {
		p.enforceHardCap(c, nil)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	summary, err := p.summarizer.Summarize(sctx, older, c.summary)
	if err != nil || strings.TrimSpace(summary) == "" {
		p.enforceHardCap(c, err)
		return
	}

	c.summary = strings.TrimSpace(summary)
	c.summaryCoversThrough = older[len(older)-1].Sequence
	kept := make([]schema.Turn, len(recent))
	copy(kept, recent)
	c.turns = kept
}

// enforceHardCap trims the oldest turns without summarizing. Nothing is
// dropped until the log exceeds HardCap, so every removal below the cap
// has at least been attempted through the summarizer first.
func (p *CompactionPolicy) enforceHardCap(c *conversation, cause error) {
	if len(c.turns) <= p.HardCap {
		slog.Warn("memory: summarizer unavailable, compaction deferred",
			"turns", len(c.turns), "err", cause)
		return
	}
	dropped := len(c.turns) - p.HardCap
	c.turns = append([]schema.Turn(nil), c.turns[dropped:]...)
	slog.Warn("memory: summarizer unavailable, trimmed to hard cap",
		"dropped", dropped, "hard_cap", p.HardCap, "err", cause)
}
