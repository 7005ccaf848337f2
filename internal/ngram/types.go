// Package ngram implements a compact, disk-resident n-gram frequency model.
//
// A model file consists of a fixed-size header followed by three sections
// (unigrams, bigrams, trigrams). Each section is a table of fixed-size entries
// sorted by n-gram text, followed by a blob holding the text of all entries:
//
//	[Header]
//	[Unigram entries][Unigram strings]
//	[Bigram entries][Bigram strings]
//	[Trigram entries][Trigram strings]
//
// Lookups binary-search the entry tables directly in the mapped file.
package ngram

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/xerrors"
)

var encoding = binary.LittleEndian

// Version is the only file format version this package reads and writes.
const Version = 1

const (
	// HeaderSize is the encoded size of a Header.
	HeaderSize = 4 + 7*8

	// EntrySize is the encoded size of an Entry.
	EntrySize = 16

	// MaxNgramLen is the exclusive upper bound for the length (in bytes) of
	// an n-gram's text.
	MaxNgramLen = 256
)

var (
	// ErrTruncated is returned when a buffer or file is too short to hold
	// the structure being decoded.
	ErrTruncated = xerrors.New("truncated")

	// ErrUnsupportedVersion is returned for files written in a format
	// version other than Version.
	ErrUnsupportedVersion = xerrors.New("unsupported format version")

	// ErrCorrupt is returned when offsets or lengths read from a file are
	// inconsistent with the file itself.
	ErrCorrupt = xerrors.New("corrupt model file")
)

// Arity is the number of words in an n-gram.
type Arity int

const (
	Unigram Arity = 1
	Bigram  Arity = 2
	Trigram Arity = 3
)

var arities = [...]Arity{Unigram, Bigram, Trigram}

func (a Arity) String() string {
	switch a {
	case Unigram:
		return "unigram"
	case Bigram:
		return "bigram"
	case Trigram:
		return "trigram"
	}
	return fmt.Sprintf("Arity(%d)", int(a))
}

func (a Arity) valid() bool { return a >= Unigram && a <= Trigram }

// ParseArity parses "1"/"2"/"3" or "unigram"/"bigram"/"trigram".
func ParseArity(s string) (Arity, error) {
	switch s {
	case "1", "unigram", "unigrams":
		return Unigram, nil
	case "2", "bigram", "bigrams":
		return Bigram, nil
	case "3", "trigram", "trigrams":
		return Trigram, nil
	}
	return 0, xerrors.Errorf("invalid arity %q: expected one of unigram, bigram, trigram", s)
}

// A Header is stored at offset 0 of every model file.
type Header struct {
	Version     uint32
	Counts      [3]uint64 // number of entries, indexed by Arity-1
	TotalTokens uint64    // sum of all unigram counts
	Offsets     [3]uint64 // absolute section offsets, indexed by Arity-1
}

// Count returns the number of entries in the section for a, or 0 for an
// invalid arity.
func (h Header) Count(a Arity) uint64 {
	if !a.valid() {
		return 0
	}
	return h.Counts[a-1]
}

// Offset returns the absolute file offset of the section for a, or 0 for an
// invalid arity.
func (h Header) Offset(a Arity) uint64 {
	if !a.valid() {
		return 0
	}
	return h.Offsets[a-1]
}

func (h *Header) Marshal(b []byte) {
	encoding.PutUint32(b, h.Version)
	off := 4
	for _, c := range h.Counts {
		encoding.PutUint64(b[off:], c)
		off += 8
	}
	encoding.PutUint64(b[off:], h.TotalTokens)
	off += 8
	for _, o := range h.Offsets {
		encoding.PutUint64(b[off:], o)
		off += 8
	}
}

// Unmarshal decodes b into h. Unlike DecodeHeader, it does not check the
// version.
func (h *Header) Unmarshal(b []byte) error {
	if len(b) < HeaderSize {
		return xerrors.Errorf("header: %d of %d bytes: %w", len(b), HeaderSize, ErrTruncated)
	}
	h.Version = encoding.Uint32(b)
	off := 4
	for i := range h.Counts {
		h.Counts[i] = encoding.Uint64(b[off:])
		off += 8
	}
	h.TotalTokens = encoding.Uint64(b[off:])
	off += 8
	for i := range h.Offsets {
		h.Offsets[i] = encoding.Uint64(b[off:])
		off += 8
	}
	return nil
}

// EncodeHeader returns the on-disk representation of h.
func EncodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	h.Marshal(b[:])
	return b
}

// DecodeHeader decodes and version-checks a header.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if err := h.Unmarshal(b); err != nil {
		return Header{}, err
	}
	if h.Version != Version {
		return Header{}, xerrors.Errorf("version %d (want %d): %w", h.Version, Version, ErrUnsupportedVersion)
	}
	return h, nil
}

// An Entry describes one n-gram within a section.
type Entry struct {
	StringOffset uint32 // offset within the section's string blob
	StringLen    uint16
	Reserved     uint16 // always 0
	Count        uint64
}

func (e *Entry) Marshal(b []byte) {
	encoding.PutUint32(b, e.StringOffset)
	encoding.PutUint16(b[4:], e.StringLen)
	encoding.PutUint16(b[6:], e.Reserved)
	encoding.PutUint64(b[8:], e.Count)
}

// Unmarshal decodes b, which must be at least EntrySize bytes long.
func (e *Entry) Unmarshal(b []byte) {
	e.StringOffset = encoding.Uint32(b)
	e.StringLen = encoding.Uint16(b[4:])
	e.Reserved = encoding.Uint16(b[6:])
	e.Count = encoding.Uint64(b[8:])
}

// EncodeEntry returns the on-disk representation of an entry.
func EncodeEntry(stringOffset uint32, stringLen uint16, count uint64) [EntrySize]byte {
	var b [EntrySize]byte
	e := Entry{
		StringOffset: stringOffset,
		StringLen:    stringLen,
		Count:        count,
	}
	e.Marshal(b[:])
	return b
}

// DecodeEntry decodes an entry, failing on short input.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < EntrySize {
		return Entry{}, xerrors.Errorf("entry: %d of %d bytes: %w", len(b), EntrySize, ErrTruncated)
	}
	var e Entry
	e.Unmarshal(b)
	return e, nil
}

// sectionSize is the size of a section with n entries and the specified
// amount of string bytes.
func sectionSize(n, stringBytes uint64) uint64 {
	return n*EntrySize + stringBytes
}

// layout computes the header for sections with the specified entry counts
// and string blob sizes. It returns the header and the resulting file size.
func layout(counts, stringBytes [3]uint64, totalTokens uint64) (Header, uint64) {
	h := Header{
		Version:     Version,
		Counts:      counts,
		TotalTokens: totalTokens,
	}
	off := uint64(HeaderSize)
	for i := range h.Offsets {
		h.Offsets[i] = off
		off += sectionSize(counts[i], stringBytes[i])
	}
	return h, off
}

// validNgram reports whether text can be stored in a model file.
func validNgram[T string | []byte](text T) bool {
	if len(text) == 0 || len(text) >= MaxNgramLen {
		return false
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t', '\n', '\r':
			return false
		}
	}
	return true
}
