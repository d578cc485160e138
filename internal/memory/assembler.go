package memory

import (
	"strings"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// Render flattens a conversation snapshot into the context block passed to
// every model call: an optional "SUMMARY:" line, a blank separator, then
// one "ROLE: content" line per retained turn, oldest first.
//
// Render is a pure function of its input: two calls with the same state
// produce byte-identical output. An empty state renders to the empty
// string.
func Render(state schema.ConversationState) string {
	var b strings.Builder

	if state.Summary != "" {
		b.WriteString("SUMMARY: ")
		b.WriteString(state.Summary)
		if len(state.Turns) > 0 {
			b.WriteString("\n\n")
		}
	}

	for i, t := range state.Turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(t.Role)))
		b.WriteString(": ")
		b.WriteString(t.Content)
	}

	return b.String()
}
