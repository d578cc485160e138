// Package memory implements pazarbot's per-user conversational memory: a
// bounded turn log with summarization-based compaction, the renderer that
// flattens it into prompt context, and an idle-eviction sweeper.
//
// ConversationState is owned exclusively by the Store. Every other
// component sees read-only snapshots; append and compaction execute as a
// single atomic unit under the per-user lock.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// conversation is the mutable per-user state. All mutation happens under
// mu; two concurrent appends for the same user can never interleave
// through compaction and corrupt the summary/turns split.
type conversation struct {
	mu                   sync.Mutex
	turns                []schema.Turn
	summary              string
	summaryCoversThrough int64
	nextSeq              int64
	lastActive           time.Time
}

// Store holds every user's conversation, keyed by user id. Conversations
// are created lazily on the first turn from a user.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*conversation
	policy *CompactionPolicy
}

// NewStore creates an empty Store. policy may be nil, in which case turns
// accumulate without bound (used only in tests).
func NewStore(policy *CompactionPolicy) *Store {
	return &Store{
		users:  make(map[string]*conversation),
		policy: policy,
	}
}

func (s *Store) conv(userID string) *conversation {
	s.mu.RLock()
	c, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.users[userID]; ok {
		return c
	}
	c = &conversation{nextSeq: 1, lastActive: time.Now()}
	s.users[userID] = c
	return c
}

// Append records a new turn for userID with the next sequence number and
// runs the compaction policy before returning. The turn is committed even
// if compaction degrades or ctx is later cancelled.
func (s *Store) Append(ctx context.Context, userID string, role schema.Role, content string) int64 {
	c := s.conv(userID)
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.nextSeq
	c.nextSeq++
	c.turns = append(c.turns, schema.Turn{Role: role, Content: content, Sequence: seq})
	c.lastActive = time.Now()

	if s.policy != nil {
		s.policy.compact(ctx, c)
	}
	return seq
}

// State returns a snapshot of userID's conversation. Unknown users get an
// empty state, not an error. The snapshot shares nothing with store
// internals; callers cannot mutate store state through it.
func (s *Store) State(userID string) schema.ConversationState {
	s.mu.RLock()
	c, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return schema.ConversationState{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	turns := make([]schema.Turn, len(c.turns))
	copy(turns, c.turns)
	return schema.ConversationState{
		Turns:                turns,
		Summary:              c.summary,
		SummaryCoversThrough: c.summaryCoversThrough,
	}
}

// Clear resets userID's conversation to empty; used for explicit session
// reset. A cleared conversation is indistinguishable from a brand-new one.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// EvictIdle drops conversations whose last activity predates cutoff and
// returns how many were removed.
func (s *Store) EvictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, c := range s.users {
		c.mu.Lock()
		idle := c.lastActive.Before(cutoff)
		c.mu.Unlock()
		if idle {
			delete(s.users, id)
			n++
		}
	}
	if n > 0 {
		slog.Info("memory: evicted idle conversations", "count", n)
	}
	return n
}
