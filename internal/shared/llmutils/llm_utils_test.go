package llmutils

import (
	"errors"
	"testing"
)

func TestExtractJSONArray_Wrapped(t *testing.T) {
	var terms []string
	err := ExtractJSONArray("Sure! Here are the terms:\n[\"muz\", \"elma\"]\nHope that helps.", &terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(terms) != 2 || terms[0] != "muz" || terms[1] != "elma" {
		t.Errorf("unexpected terms %v", terms)
	}
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	var terms []string
	err := ExtractJSONArray("no json here", &terms)
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestExtractJSONArray_InvalidJSON(t *testing.T) {
	var terms []string
	err := ExtractJSONArray("[not, valid]", &terms)
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	var plan struct {
		ResponseType string `json:"response_type"`
		Primary      []int  `json:"primary_products"`
	}
	text := "```json\n{\"response_type\": \"price_comparison\", \"primary_products\": [0, 2]}\n```"
	if err := ExtractJSONObject(text, &plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ResponseType != "price_comparison" {
		t.Errorf("unexpected response type %q", plan.ResponseType)
	}
	if len(plan.Primary) != 2 {
		t.Errorf("unexpected primary %v", plan.Primary)
	}
}

func TestExtractIndexList_DropsOutOfRange(t *testing.T) {
	got, err := ExtractIndexList("[0, 2, 7, -1]", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected [0 2], got %v", got)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "SELECT 1", "SELECT 1"},
		{"plain fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"surrounding whitespace", "  ```sql\nSELECT 1\n```  ", "SELECT 1"},
		{"multiline", "```sql\nSELECT name\nFROM all_products\n```", "SELECT name\nFROM all_products"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsYes(t *testing.T) {
	for in, want := range map[string]bool{
		"YES":                   true,
		"yes, definitely":       true,
		"The answer is YES.":    true,
		"NO":                    false,
		"I cannot answer that.": false,
	} {
		if got := IsYes(in); got != want {
			t.Errorf("IsYes(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := Truncate("0123456789", 4); got != "0123..." {
		t.Errorf("unexpected %q", got)
	}
}
