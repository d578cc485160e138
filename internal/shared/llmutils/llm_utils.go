// Package llmutils contains helpers for coercing loosely structured model
// output into validated Go values. Model text is parsed, never evaluated:
// a response that does not contain the expected JSON shape produces
// ErrMalformedOutput and the caller applies its documented fallback.
package llmutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput reports model output that could not be parsed into
// the expected structure. It is recovered locally with a fallback; the raw
// text never reaches the end user.
var ErrMalformedOutput = errors.New("malformed model output")

// ExtractJSONArray locates the first '[' and last ']' in s and unmarshals
// the slice between them into dst. Models routinely wrap their JSON in
// prose or code fences; the bracket slice tolerates both.
func ExtractJSONArray(s string, dst any) error {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON array in %q", ErrMalformedOutput, Truncate(s, 80))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// ExtractJSONObject is ExtractJSONArray for a single '{...}' object.
func ExtractJSONObject(s string, dst any) error {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object in %q", ErrMalformedOutput, Truncate(s, 80))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// ExtractIndexList parses a bare list of row indices like "[0, 2]" and
// drops entries outside [0, n). Out-of-range indices are a model mistake,
// not an error.
func ExtractIndexList(s string, n int) ([]int, error) {
	var raw []int
	if err := ExtractJSONArray(s, &raw); err != nil {
		return nil, err
	}
	out := make([]int, 0, len(raw))
	for _, i := range raw {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	return out, nil
}

// StripFences removes a markdown code fence wrapper (``` or ```sql etc.)
// that models add around generated queries.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		if tag := strings.TrimSpace(s[:i]); tag == "" || isFenceTag(tag) {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// isFenceTag reports whether s looks like a fence language tag ("sql",
// "json", ...) rather than query text.
func isFenceTag(s string) bool {
	if len(s) > 12 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// IsYes reports whether a YES/NO classification answer contains YES.
func IsYes(s string) bool {
	return strings.Contains(strings.ToUpper(s), "YES")
}

// Truncate shortens s to at most n characters, adding "..." if it was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
