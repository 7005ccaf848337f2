package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ngram.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("Load(\"\"): unexpected diff (-want +got):\n%s", diff)
	}
	if got, want := cfg.LogLevel(), log.InfoLevel; got != want {
		t.Errorf("LogLevel() = %v, want %v", got, want)
	}
	wantBackoff := ngram.Backoff{MinTrigramCount: 1, MinBigramCount: 1, Smoothing: 0.5}
	if diff := cmp.Diff(wantBackoff, cfg.Compare); diff != "" {
		t.Errorf("Compare: unexpected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadPartial(t *testing.T) {
	path := writeConfig(t, `
[build]
sequential = true

[compare]
min_trigram_count = 3

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Build.Sequential = true
	want.Compare.MinTrigramCount = 3
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Load: unexpected diff (-want +got):\n%s", diff)
	}
	if got, want := cfg.LogLevel(), log.DebugLevel; got != want {
		t.Errorf("LogLevel() = %v, want %v", got, want)
	}

	logger := log.New(os.Stderr)
	opts := cfg.BuildOptions(logger)
	wantOpts := &ngram.Options{
		Logger:        logger,
		BufferSize:    1 << 20,
		ProgressEvery: 10000000,
		Sequential:    true,
	}
	if diff := cmp.Diff(wantOpts, opts, cmp.Comparer(func(a, b *log.Logger) bool { return a == b })); diff != "" {
		t.Errorf("BuildOptions: unexpected diff (-want +got):\n%s", diff)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[build]
buffer_size = 4096
colour = "blue"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unknown keys must not be fatal: %v", err)
	}
	if got, want := cfg.Build.BufferSize, 4096; got != want {
		t.Errorf("BufferSize = %d, want %d", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content string
	}{
		{"syntax", "[build\n"},
		{"type", "[build]\nbuffer_size = \"large\"\n"},
		{"negative buffer", "[build]\nbuffer_size = -1\n"},
		{"negative smoothing", "[compare]\nsmoothing = -0.5\n"},
		{"level", "[log]\nlevel = \"chatty\"\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("Load(%q) unexpectedly succeeded", tt.content)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !os.IsNotExist(err) {
		t.Errorf("Load(missing) = %v, want a not-exist error", err)
	}
}

func TestSave(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compare.Smoothing = 1
	cfg.Build.ProgressEvery = 0
	path := filepath.Join(t.TempDir(), "ngram.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("Load(Save()): unexpected diff (-want +got):\n%s", diff)
	}
}

func TestEncode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Build.BufferSize = 4096
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got := DefaultConfig()
	md, err := toml.Decode(buf.String(), got)
	if err != nil {
		t.Fatal(err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("Encode() wrote unknown keys: %v", undecoded)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("Decode(Encode()): unexpected diff (-want +got):\n%s", diff)
	}
}
