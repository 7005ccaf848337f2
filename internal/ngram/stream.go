package ngram

import (
	"context"
	"io"
	"math"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// StreamSources names one text file per arity. Each file contains one
// "ngram<TAB>count" record per line, sorted ascending by n-gram text
// (bytewise). An empty or non-existent path yields zero entries.
type StreamSources struct {
	Unigrams string
	Bigrams  string
	Trigrams string
}

func (s StreamSources) path(a Arity) string {
	switch a {
	case Unigram:
		return s.Unigrams
	case Bigram:
		return s.Bigrams
	case Trigram:
		return s.Trigrams
	}
	return ""
}

// sectionPlan is the result of a sizing pass over one source.
type sectionPlan struct {
	arity       Arity
	path        string
	entries     uint64
	stringBytes uint64
	skipped     uint64
	tokens      uint64
}

type streamBuilder struct {
	ctx  context.Context
	opts Options
}

// scan calls fn for every valid record in the source at path and returns the
// number of rejected lines.
func (sb *streamBuilder) scan(a Arity, path string, fn func(text []byte, count uint64) error) (skipped uint64, _ error) {
	if path == "" {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	lr := newLineReader(f, sb.opts.BufferSize)
	var lines uint64
	for {
		line, overlong, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, xerrors.Errorf("%s: %w", path, err)
		}
		lines++
		if lines%65536 == 0 {
			if err := sb.ctx.Err(); err != nil {
				return 0, err
			}
		}
		if sb.opts.ProgressEvery > 0 && lines%sb.opts.ProgressEvery == 0 {
			sb.opts.Logger.Debugf("%v: %d lines read from %s", a, lines, path)
		}
		if overlong {
			skipped++
			continue
		}
		text, count, ok := parseRecord(line)
		if !ok {
			skipped++
			continue
		}
		if err := fn(text, count); err != nil {
			return 0, err
		}
	}
	return skipped, sb.ctx.Err()
}

func (sb *streamBuilder) size(a Arity, path string) (*sectionPlan, error) {
	start := time.Now()
	plan := &sectionPlan{arity: a, path: path}
	skipped, err := sb.scan(a, path, func(text []byte, count uint64) error {
		plan.entries++
		plan.stringBytes += uint64(len(text))
		if a == Unigram {
			plan.tokens = saturatingAdd(plan.tokens, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	plan.skipped = skipped
	if plan.stringBytes > math.MaxUint32 {
		return nil, xerrors.Errorf("%v: %w", a, ErrSectionTooLarge)
	}
	sb.opts.Logger.Infof("%v: %d entries, %d string bytes, %d skipped lines (sized in %v)",
		a, plan.entries, plan.stringBytes, plan.skipped, time.Since(start))
	return plan, nil
}

func (sb *streamBuilder) sizeAll(sources StreamSources) ([3]*sectionPlan, error) {
	var plans [3]*sectionPlan
	if sb.opts.Sequential {
		for _, a := range arities {
			plan, err := sb.size(a, sources.path(a))
			if err != nil {
				return plans, err
			}
			plans[a-1] = plan
		}
		return plans, nil
	}
	// The sources are independent, so they can be sized concurrently:
	var eg errgroup.Group
	for _, a := range arities {
		a := a // copy
		eg.Go(func() error {
			plan, err := sb.size(a, sources.path(a))
			if err != nil {
				return err
			}
			plans[a-1] = plan
			return nil
		})
	}
	return plans, eg.Wait()
}

func errSourceChanged(plan *sectionPlan, pass string, entries, stringBytes uint64) error {
	return xerrors.Errorf("%s changed during build: %s pass saw %d entries (%d bytes), sizing pass saw %d entries (%d bytes)",
		plan.path, pass, entries, stringBytes, plan.entries, plan.stringBytes)
}

// writeEntries re-streams the source and writes one entry per valid record.
func (sb *streamBuilder) writeEntries(cw *countingWriter, plan *sectionPlan) error {
	var (
		buf     [EntrySize]byte
		off     uint64
		entries uint64
	)
	_, err := sb.scan(plan.arity, plan.path, func(text []byte, count uint64) error {
		if off+uint64(len(text)) > plan.stringBytes {
			return errSourceChanged(plan, "entry", entries+1, off+uint64(len(text)))
		}
		e := Entry{
			StringOffset: uint32(off),
			StringLen:    uint16(len(text)),
			Count:        count,
		}
		e.Marshal(buf[:])
		if _, err := cw.Write(buf[:]); err != nil {
			return err
		}
		off += uint64(len(text))
		entries++
		return nil
	})
	if err != nil {
		return err
	}
	if entries != plan.entries || off != plan.stringBytes {
		return errSourceChanged(plan, "entry", entries, off)
	}
	return nil
}

// writeStrings re-streams the source and writes the text of every valid
// record, in the same order as writeEntries.
func (sb *streamBuilder) writeStrings(cw *countingWriter, plan *sectionPlan) error {
	var entries, written uint64
	_, err := sb.scan(plan.arity, plan.path, func(text []byte, _ uint64) error {
		if _, err := cw.Write(text); err != nil {
			return err
		}
		written += uint64(len(text))
		entries++
		return nil
	})
	if err != nil {
		return err
	}
	if entries != plan.entries || written != plan.stringBytes {
		return errSourceChanged(plan, "string", entries, written)
	}
	return nil
}

// BuildStreaming builds a model at path from the sorted text sources,
// using memory bounded by the buffer size regardless of the input size. Each
// source is read three times: once to size its section, once to write the
// entry table and once to write the string blob.
//
// The sources must already be sorted; BuildStreaming does not verify the
// order (see Verify). path is replaced atomically once the build succeeded.
func BuildStreaming(ctx context.Context, path string, sources StreamSources, opts *Options) (*BuildStats, error) {
	start := time.Now()
	sb := &streamBuilder{ctx: ctx, opts: opts.withDefaults()}
	stats, err := sb.build(path, sources)
	if err == nil {
		stats.Duration = time.Since(start)
		sb.opts.Logger.Infof("wrote %s: %v", path, stats)
	}
	recordBuild("streaming", stats, err)
	return stats, err
}

func (sb *streamBuilder) build(path string, sources StreamSources) (*BuildStats, error) {
	plans, err := sb.sizeAll(sources)
	if err != nil {
		return nil, err
	}

	var counts, stringBytes [3]uint64
	for i, plan := range plans {
		counts[i] = plan.entries
		stringBytes[i] = plan.stringBytes
	}
	h, size := layout(counts, stringBytes, plans[0].tokens)

	err = writeModel(path, h, size, sb.opts.BufferSize, func(cw *countingWriter) error {
		for _, plan := range plans {
			start := time.Now()
			if err := sb.writeEntries(cw, plan); err != nil {
				return err
			}
			if err := sb.writeStrings(cw, plan); err != nil {
				return err
			}
			sb.opts.Logger.Infof("wrote %v section in %v", plan.arity, time.Since(start))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := statsFromHeader(h, size)
	for i, plan := range plans {
		stats.Skipped[i] = plan.skipped
	}
	return stats, nil
}
