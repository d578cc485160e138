package assistant

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrompts_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadPrompts("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ShouldAnswer != DefaultPrompts().ShouldAnswer {
		t.Error("expected default prompts")
	}
}

func TestLoadPrompts_MissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ExtractTerms != DefaultPrompts().ExtractTerms {
		t.Error("expected default prompts")
	}
}

func TestLoadPrompts_OverridesMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "shouldAnswer: |\n  Custom gate for %s and %q\ngeneral: \"Custom general %s %s\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ShouldAnswer == DefaultPrompts().ShouldAnswer {
		t.Error("shouldAnswer not overridden")
	}
	if p.General != "Custom general %s %s" {
		t.Errorf("general not overridden: %q", p.General)
	}
	// Untouched prompts keep their defaults.
	if p.Respond != DefaultPrompts().Respond {
		t.Error("respond should keep its default")
	}
}

func TestLoadPrompts_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrompts(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
