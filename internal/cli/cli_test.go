package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionIsValidSemver(t *testing.T) {
	ok, err := Satisfies(">= 0.1.0")
	if err != nil {
		t.Fatalf("Satisfies failed: %v", err)
	}
	if !ok {
		t.Errorf("version %s should satisfy >= 0.1.0", Version)
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		constraint string
		want       bool
	}{
		{">= 0.1", true},
		{"< 100.0.0", true},
		{"> 99.0.0", false},
	}

	for _, tt := range tests {
		got, err := Satisfies(tt.constraint)
		if err != nil {
			t.Fatalf("Satisfies(%q) failed: %v", tt.constraint, err)
		}
		if got != tt.want {
			t.Errorf("Satisfies(%q) = %v, want %v", tt.constraint, got, tt.want)
		}
	}
}

func TestSatisfiesRejectsGarbage(t *testing.T) {
	if _, err := Satisfies("not a constraint"); err == nil {
		t.Error("expected error for malformed constraint")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("explicit missing config path should error")
	}

	cfg = DefaultConfig()
	if cfg.Prompt != "ready> " {
		t.Errorf("default prompt wrong: %q", cfg.Prompt)
	}
	if cfg.MaxHistory != 1000 {
		t.Errorf("default max history wrong: %d", cfg.MaxHistory)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bake.yaml")
	content := "prompt: \"pizza> \"\nmax_history: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Prompt != "pizza> " {
		t.Errorf("prompt wrong: %q", cfg.Prompt)
	}
	if cfg.MaxHistory != 50 {
		t.Errorf("max history wrong: %d", cfg.MaxHistory)
	}
	// Unset fields keep their defaults.
	if cfg.HistoryFile == "" {
		t.Error("history file should default, not clear")
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bake.yaml")
	if err := os.WriteFile(path, []byte(":\n\t:"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
