package ngram

import (
	"bufio"
	"context"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// ErrSectionTooLarge is returned when the strings of a section do not fit
// into 32-bit string offsets.
var ErrSectionTooLarge = xerrors.New("section string blob exceeds 4 GiB")

type countingWriter struct {
	offset uint64
	bufw   *bufio.Writer
}

func newCountingWriter(w io.Writer, size int) *countingWriter {
	return &countingWriter{
		bufw: bufio.NewWriterSize(w, size),
	}
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.bufw.Write(p)
	cw.offset += uint64(n)
	return n, err
}

func (cw *countingWriter) WriteString(s string) (n int, err error) {
	n, err = cw.bufw.WriteString(s)
	cw.offset += uint64(n)
	return n, err
}

func (cw *countingWriter) Flush() error {
	return cw.bufw.Flush()
}

// writeModel writes h followed by whatever fn writes into a temporary file
// next to path, which replaces path only if exactly size bytes were written.
func writeModel(path string, h Header, size uint64, bufSize int, fn func(cw *countingWriter) error) error {
	pf, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	cw := newCountingWriter(pf, bufSize)
	hdr := EncodeHeader(h)
	if _, err := cw.Write(hdr[:]); err != nil {
		return err
	}
	if err := fn(cw); err != nil {
		return err
	}
	if err := cw.Flush(); err != nil {
		return err
	}
	if cw.offset != size {
		return xerrors.Errorf("wrote %d bytes, expected %d", cw.offset, size)
	}
	return pf.CloseAtomicallyReplace()
}

func saturatingAdd(a, b uint64) uint64 {
	if s := a + b; s >= a {
		return s
	}
	return math.MaxUint64
}

// A Writer builds a model from n-grams held in memory. Use the streaming
// builder (BuildStreaming) for inputs which do not fit into memory.
type Writer struct {
	opts        Options
	counts      [3]map[string]uint64
	skipped     [3]uint64
	totalTokens uint64
	totalSet    bool
}

// NewWriter returns an empty Writer. opts may be nil.
func NewWriter(opts *Options) *Writer {
	w := &Writer{opts: opts.withDefaults()}
	for i := range w.counts {
		w.counts[i] = make(map[string]uint64)
	}
	return w
}

// Add adds count occurrences of the n-gram text (words joined by a single
// space) to the section for a. Counts of repeated n-grams are summed. Add
// reports whether the n-gram was accepted; empty or oversized n-grams and
// zero counts are rejected.
func (w *Writer) Add(a Arity, text string, count uint64) bool {
	if !a.valid() {
		return false
	}
	if count == 0 || !validNgram(text) {
		w.skipped[a-1]++
		return false
	}
	m := w.counts[a-1]
	m[text] = saturatingAdd(m[text], count)
	return true
}

func (w *Writer) AddUnigram(word string, count uint64) bool {
	return w.Add(Unigram, word, count)
}

func (w *Writer) AddBigram(w1, w2 string, count uint64) bool {
	return w.Add(Bigram, w1+" "+w2, count)
}

func (w *Writer) AddTrigram(w1, w2, w3 string, count uint64) bool {
	return w.Add(Trigram, w1+" "+w2+" "+w3, count)
}

// AddCounts adds a pre-collected frequency table. It returns the number of
// rejected n-grams.
func (w *Writer) AddCounts(a Arity, counts map[string]uint64) int {
	var rejected int
	for text, count := range counts {
		if !w.Add(a, text, count) {
			rejected++
		}
	}
	return rejected
}

// AddFile adds the records of the "ngram<TAB>count" file at path, which
// need not be sorted. A missing file adds nothing. Rejected lines are counted
// like rejected Add calls.
func (w *Writer) AddFile(ctx context.Context, a Arity, path string) error {
	if !a.valid() {
		return xerrors.Errorf("invalid arity %d", int(a))
	}
	sb := &streamBuilder{ctx: ctx, opts: w.opts}
	m := w.counts[a-1]
	skipped, err := sb.scan(a, path, func(text []byte, count uint64) error {
		m[string(text)] = saturatingAdd(m[string(text)], count)
		return nil
	})
	if err != nil {
		return err
	}
	w.skipped[a-1] += skipped
	return nil
}

// SetTotalTokens sets the probability normalization denominator. If it is
// never called, the sum of all unigram counts is used.
func (w *Writer) SetTotalTokens(n uint64) {
	w.totalTokens = n
	w.totalSet = true
}

func (w *Writer) total() uint64 {
	if w.totalSet {
		return w.totalTokens
	}
	var sum uint64
	for _, c := range w.counts[0] {
		sum = saturatingAdd(sum, c)
	}
	return sum
}

// Flush writes the model to path, atomically replacing any existing file.
func (w *Writer) Flush(path string) (*BuildStats, error) {
	start := time.Now()
	stats, err := w.flush(path)
	if err == nil {
		stats.Duration = time.Since(start)
		w.opts.Logger.Infof("wrote %s: %v", path, stats)
	}
	recordBuild("memory", stats, err)
	return stats, err
}

func (w *Writer) flush(path string) (*BuildStats, error) {
	// Sort the n-grams to create a deterministic, binary-searchable model:
	var (
		keys        [3][]string
		counts      [3]uint64
		stringBytes [3]uint64
	)
	for i, m := range w.counts {
		keys[i] = make([]string, 0, len(m))
		for text := range m {
			keys[i] = append(keys[i], text)
			stringBytes[i] += uint64(len(text))
		}
		slices.SortFunc(keys[i], strings.Compare)
		counts[i] = uint64(len(keys[i]))
		if stringBytes[i] > math.MaxUint32 {
			return nil, xerrors.Errorf("%v: %w", Arity(i+1), ErrSectionTooLarge)
		}
	}

	h, size := layout(counts, stringBytes, w.total())
	err := writeModel(path, h, size, w.opts.BufferSize, func(cw *countingWriter) error {
		for i := range keys {
			if err := writeSection(cw, keys[i], w.counts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats := statsFromHeader(h, size)
	stats.Skipped = w.skipped
	return stats, nil
}

func writeSection(cw *countingWriter, keys []string, counts map[string]uint64) error {
	var (
		buf [EntrySize]byte
		off uint32
	)
	for _, text := range keys {
		e := Entry{
			StringOffset: off,
			StringLen:    uint16(len(text)),
			Count:        counts[text],
		}
		e.Marshal(buf[:])
		if _, err := cw.Write(buf[:]); err != nil {
			return err
		}
		off += uint32(len(text))
	}
	for _, text := range keys {
		if _, err := cw.WriteString(text); err != nil {
			return err
		}
	}
	return nil
}
