package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME at an empty temp dir and moves the working directory
// to another, so no real config files leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".journal.json"); cfg.JournalFile != want {
		t.Errorf("JournalFile: got %q, want %q", cfg.JournalFile, want)
	}
	if cfg.SortOrder != "asc" {
		t.Errorf("SortOrder: got %q, want asc", cfg.SortOrder)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: got %q, want text", cfg.LogFormat)
	}
	if cfg.LogTimestamps {
		t.Error("LogTimestamps: got true, want false")
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := isolate(t)

	content := `journal_file = "tasks.json"
sort_order = "desc"
log_level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, "journal.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.JournalFile != "tasks.json" {
		t.Errorf("JournalFile: got %q, want tasks.json", cfg.JournalFile)
	}
	if cfg.SortOrder != "desc" {
		t.Errorf("SortOrder: got %q, want desc", cfg.SortOrder)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("JOURNAL_FILE", "/tmp/env.json")
	t.Setenv("JOURNAL_SORT_ORDER", "desc")
	t.Setenv("JOURNAL_LOG_TIMESTAMPS", "yes")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.JournalFile != "/tmp/env.json" {
		t.Errorf("JournalFile: got %q, want /tmp/env.json", cfg.JournalFile)
	}
	if cfg.SortOrder != "desc" {
		t.Errorf("SortOrder: got %q, want desc", cfg.SortOrder)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps: got false, want true")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("JOURNAL_FILE", "/tmp/env.json")
	t.Setenv("JOURNAL_LOG_LEVEL", "warn")

	cfg, err := Load(newFlagSet(), []string{"-journal", "/tmp/flag.json", "-log-level", "error"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.JournalFile != "/tmp/flag.json" {
		t.Errorf("JournalFile: got %q, want /tmp/flag.json", cfg.JournalFile)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel: got %q, want error", cfg.LogLevel)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		input string
		want  string
	}{
		{"~/.journal.json", "/home/tester/.journal.json"},
		{"~", "/home/tester"},
		{"/abs/path.json", "/abs/path.json"},
		{"relative.json", "relative.json"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBoolFromString(t *testing.T) {
	truthy := []string{"1", "true", "yes", "on", " TRUE "}
	for _, s := range truthy {
		if !boolFromString(s) {
			t.Errorf("boolFromString(%q): got false, want true", s)
		}
	}
	falsy := []string{"0", "false", "no", "off", ""}
	for _, s := range falsy {
		if boolFromString(s) {
			t.Errorf("boolFromString(%q): got true, want false", s)
		}
	}
}
