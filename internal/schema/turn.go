// Package schema defines the data types shared across pazarbot components:
// conversation turns, product records, and the external-collaborator
// contracts (text generation and summarization).
package schema

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once created;
// Sequence is assigned by the store and is strictly increasing per user,
// never reused or reordered.
type Turn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Sequence int64  `json:"sequence"`
}

// ConversationState is a snapshot of one user's conversation: the turns
// retained verbatim plus the summary of everything already compacted away.
// SummaryCoversThrough is the highest sequence number folded into Summary;
// zero means nothing has been summarized. A turn is either present in Turns
// or covered by the summary, never both and never neither (below the hard
// cap).
type ConversationState struct {
	Turns                []Turn `json:"turns"`
	Summary              string `json:"summary,omitempty"`
	SummaryCoversThrough int64  `json:"summary_covers_through,omitempty"`
}
