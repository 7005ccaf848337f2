package ngram

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// BuildStats summarizes a finished build for operator-facing reporting.
type BuildStats struct {
	Unigrams    uint64
	Bigrams     uint64
	Trigrams    uint64
	TotalTokens uint64
	FileSize    uint64

	// Skipped counts rejected input records, indexed by Arity-1.
	Skipped  [3]uint64
	Duration time.Duration
}

// Count returns the number of entries written for a.
func (s *BuildStats) Count(a Arity) uint64 {
	switch a {
	case Unigram:
		return s.Unigrams
	case Bigram:
		return s.Bigrams
	case Trigram:
		return s.Trigrams
	}
	return 0
}

func (s *BuildStats) String() string {
	return fmt.Sprintf("%d unigrams, %d bigrams, %d trigrams, %d tokens, %d bytes (skipped %d/%d/%d) in %v",
		s.Unigrams, s.Bigrams, s.Trigrams, s.TotalTokens, s.FileSize,
		s.Skipped[0], s.Skipped[1], s.Skipped[2], s.Duration)
}

func statsFromHeader(h Header, fileSize uint64) *BuildStats {
	return &BuildStats{
		Unigrams:    h.Counts[0],
		Bigrams:     h.Counts[1],
		Trigrams:    h.Counts[2],
		TotalTokens: h.TotalTokens,
		FileSize:    fileSize,
	}
}

// Options configure the builders. The zero value is usable.
type Options struct {
	// Logger receives progress messages. Defaults to a logger writing to
	// stderr with prefix "ngram".
	Logger *log.Logger

	// BufferSize is the size of the read and write buffers, in bytes.
	BufferSize int

	// ProgressEvery controls how many input lines the streaming builder
	// processes between progress messages. 0 disables progress messages.
	ProgressEvery uint64

	// Sequential disables running the streaming builder's sizing passes
	// concurrently.
	Sequential bool
}

const defaultBufferSize = 1 << 20

func (o *Options) withDefaults() Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "ngram",
			Level:  log.GetLevel(),
		})
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	return opts
}
