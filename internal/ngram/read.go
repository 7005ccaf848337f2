package ngram

import (
	"bytes"
	"sort"
	"strings"

	"github.com/grammarcheck/ngramstore/internal/mmap"
	"golang.org/x/xerrors"
)

// section provides access to the entry table and string blob of one arity
// within the mapped file. Offsets and lengths stored in entries are
// untrusted and checked before slicing the blob.
type section struct {
	entries []byte
	blob    []byte
	n       int
}

func (s *section) entry(i int) Entry {
	var e Entry
	e.Unmarshal(s.entries[i*EntrySize:])
	return e
}

func (s *section) text(e *Entry) ([]byte, error) {
	start := uint64(e.StringOffset)
	end := start + uint64(e.StringLen)
	if end > uint64(len(s.blob)) {
		return nil, xerrors.Errorf("string [%d, %d) outside of blob [0, %d): %w", start, end, len(s.blob), ErrCorrupt)
	}
	return s.blob[start:end], nil
}

// search returns the index of the first entry whose text is >= key.
func (s *section) search(key []byte) (int, error) {
	var serr error
	idx := sort.Search(s.n, func(i int) bool {
		if serr != nil {
			return true
		}
		e := s.entry(i)
		t, err := s.text(&e)
		if err != nil {
			serr = err
			return true
		}
		return bytes.Compare(t, key) >= 0
	})
	return idx, serr
}

func (s *section) lookup(key []byte) (count uint64, ok bool, _ error) {
	idx, err := s.search(key)
	if err != nil {
		return 0, false, err
	}
	if idx >= s.n {
		return 0, false, nil
	}
	e := s.entry(idx)
	t, err := s.text(&e)
	if err != nil {
		return 0, false, err
	}
	if !bytes.Equal(t, key) {
		return 0, false, nil
	}
	return e.Count, true, nil
}

// A Model is an opened model file. It is safe for concurrent use by
// multiple goroutines once opened.
type Model struct {
	// Backoff tunes CompareWords. Open sets it to DefaultBackoff; change it
	// before sharing the Model between goroutines.
	Backoff Backoff

	path     string
	f        *mmap.File
	header   Header
	sections [3]section
}

// Open maps the model file at path and validates its header. Files with an
// unsupported version or inconsistent offsets are rejected.
func Open(path string) (*Model, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	m := &Model{
		Backoff: DefaultBackoff,
		path:    path,
		f:       f,
	}
	if err := m.init(); err != nil {
		f.Close()
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	if err := f.AdviseRandom(); err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

// bounds is the byte range of one section within the file.
type bounds struct {
	start    uint64
	tableEnd uint64 // end of the entry table, start of the string blob
	end      uint64
}

// sectionBounds validates the section offsets of h against the file size
// and returns the byte ranges of all sections.
func sectionBounds(h *Header, size uint64) ([3]bounds, error) {
	var b [3]bounds
	if h.Offsets[0] != HeaderSize {
		return b, xerrors.Errorf("unigram offset %d, expected %d: %w", h.Offsets[0], HeaderSize, ErrCorrupt)
	}
	for i := range h.Offsets {
		start := h.Offsets[i]
		end := size
		if i < len(h.Offsets)-1 {
			end = h.Offsets[i+1]
		}
		if start > end || end > size {
			return b, xerrors.Errorf("%v section [%d, %d) inconsistent with file size %d: %w", Arity(i+1), start, end, size, ErrCorrupt)
		}
		n := h.Counts[i]
		if n > (end-start)/EntrySize {
			return b, xerrors.Errorf("%v section: %d entries do not fit into %d bytes: %w", Arity(i+1), n, end-start, ErrCorrupt)
		}
		b[i] = bounds{
			start:    start,
			tableEnd: start + n*EntrySize,
			end:      end,
		}
	}
	return b, nil
}

// checkBlobEnd checks that the last of n entries ends exactly at the end of
// its section's string blob. Strings are written contiguously in entry
// order, so a mismatch means the blob was truncated or extended.
func checkBlobEnd(a Arity, n uint64, last []byte, blobLen uint64) error {
	var end uint64
	if n > 0 {
		var e Entry
		e.Unmarshal(last)
		end = uint64(e.StringOffset) + uint64(e.StringLen)
	}
	if end != blobLen {
		return xerrors.Errorf("%v section: strings end at %d, blob is %d bytes: %w", a, end, blobLen, ErrCorrupt)
	}
	return nil
}

func (m *Model) init() error {
	data := m.f.Data
	h, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	b, err := sectionBounds(&h, uint64(len(data)))
	if err != nil {
		return err
	}
	for i, sb := range b {
		s := section{
			entries: data[sb.start:sb.tableEnd],
			blob:    data[sb.tableEnd:sb.end],
			n:       int(h.Counts[i]),
		}
		var last []byte
		if s.n > 0 {
			last = s.entries[(s.n-1)*EntrySize:]
		}
		if err := checkBlobEnd(Arity(i+1), h.Counts[i], last, uint64(len(s.blob))); err != nil {
			return err
		}
		m.sections[i] = s
	}
	m.header = h
	return nil
}

// Close unmaps the model file. Lookups on a closed Model find nothing.
func (m *Model) Close() error {
	m.sections = [3]section{}
	return m.f.Close()
}

// Path returns the path the model was opened from.
func (m *Model) Path() string { return m.path }

func (m *Model) Header() Header { return m.header }

// TotalTokens returns the probability normalization denominator.
func (m *Model) TotalTokens() uint64 { return m.header.TotalTokens }

// Stats describes the opened model in the same terms as a build.
func (m *Model) Stats() *BuildStats {
	return statsFromHeader(m.header, uint64(len(m.f.Data)))
}

// validQuery reports whether none of the words is empty.
func validQuery(words []string) bool {
	for _, w := range words {
		if w == "" {
			return false
		}
	}
	return true
}

// Lookup returns the count stored for text in the section for a. A missing
// n-gram is reported as ok == false; the error is only non-nil if the model
// file is corrupt.
func (m *Model) Lookup(a Arity, text string) (count uint64, ok bool, _ error) {
	if !a.valid() {
		return 0, false, xerrors.Errorf("invalid arity %d", int(a))
	}
	if !validNgram(text) {
		lookupResult(a, resultRejected)
		return 0, false, nil
	}
	count, ok, err := m.sections[a-1].lookup([]byte(text))
	switch {
	case err != nil:
		lookupResult(a, resultCorrupt)
	case ok:
		lookupResult(a, resultHit)
	default:
		lookupResult(a, resultMiss)
	}
	return count, ok, err
}

func (m *Model) get(a Arity, words ...string) (uint64, bool) {
	if !validQuery(words) {
		lookupResult(a, resultRejected)
		return 0, false
	}
	count, ok, err := m.Lookup(a, strings.Join(words, " "))
	if err != nil {
		return 0, false
	}
	return count, ok
}

// GetUnigram returns the count of word. ok is false if the word was never
// observed, which does not imply a probability of zero.
func (m *Model) GetUnigram(word string) (count uint64, ok bool) {
	return m.get(Unigram, word)
}

func (m *Model) GetBigram(w1, w2 string) (count uint64, ok bool) {
	return m.get(Bigram, w1, w2)
}

func (m *Model) GetTrigram(w1, w2, w3 string) (count uint64, ok bool) {
	return m.get(Trigram, w1, w2, w3)
}

// PrefixCount sums the counts of all n-grams in the section for a whose text
// starts with prefix. n is the number of matching entries.
func (m *Model) PrefixCount(a Arity, prefix string) (sum uint64, n int, _ error) {
	if !a.valid() {
		return 0, 0, xerrors.Errorf("invalid arity %d", int(a))
	}
	if prefix == "" || len(prefix) >= MaxNgramLen {
		return 0, 0, nil
	}
	s := &m.sections[a-1]
	key := []byte(prefix)
	idx, err := s.search(key)
	if err != nil {
		return 0, 0, err
	}
	for ; idx < s.n; idx++ {
		e := s.entry(idx)
		t, err := s.text(&e)
		if err != nil {
			return 0, 0, err
		}
		if !bytes.HasPrefix(t, key) {
			break
		}
		sum = saturatingAdd(sum, e.Count)
		n++
	}
	return sum, n, nil
}
