/*
Package config loads the TOML configuration shared by the ngram tools.

An example configuration, with all values set to their defaults:

	[build]
	buffer_size = 1048576
	progress_every = 10000000
	sequential = false

	[compare]
	min_trigram_count = 1
	min_bigram_count = 1
	smoothing = 0.5

	[log]
	level = "info"
*/
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/xerrors"

	"github.com/grammarcheck/ngramstore/internal/ngram"
)

// Config holds the entire config structure.
type Config struct {
	Build   BuildConfig   `toml:"build"`
	Compare ngram.Backoff `toml:"compare"`
	Log     LogConfig     `toml:"log"`
}

// BuildConfig holds model build options.
type BuildConfig struct {
	BufferSize    int    `toml:"buffer_size"`
	ProgressEvery uint64 `toml:"progress_every"`
	Sequential    bool   `toml:"sequential"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			BufferSize:    1 << 20,
			ProgressEvery: 10000000,
		},
		Compare: ngram.DefaultBackoff,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, xerrors.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Warnf("%s: ignoring unknown key %q", path, key.String())
	}
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Build.BufferSize < 0 {
		return xerrors.Errorf("build.buffer_size must not be negative, got %d", c.Build.BufferSize)
	}
	if c.Compare.Smoothing < 0 {
		return xerrors.Errorf("compare.smoothing must not be negative, got %v", c.Compare.Smoothing)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return xerrors.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel returns the configured log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// BuildOptions returns the builder options for this configuration.
func (c *Config) BuildOptions(logger *log.Logger) *ngram.Options {
	return &ngram.Options{
		Logger:        logger,
		BufferSize:    c.Build.BufferSize,
		ProgressEvery: c.Build.ProgressEvery,
		Sequential:    c.Build.Sequential,
	}
}

// Encode writes the configuration to w in TOML format.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes the configuration to path in TOML format.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := c.Encode(f); err != nil {
		return err
	}
	return f.Close()
}
