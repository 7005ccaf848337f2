package ngram

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"golang.org/x/exp/mmap"
	"golang.org/x/xerrors"
)

// ErrUnsorted is returned by Verify for sections which are not strictly
// ascending, e.g. because the streaming builder was fed unsorted input.
var ErrUnsorted = xerrors.New("section not sorted")

// mmapReader implements io.Reader for an mmap.ReaderAt.
type mmapReader struct {
	r   *mmap.ReaderAt
	off int64
}

// Read implements io.Reader.
func (mr *mmapReader) Read(p []byte) (n int, err error) {
	n, err = mr.r.ReadAt(p, mr.off)
	mr.off += int64(n)
	return n, err
}

// sequentialReader reads a model file front to back, which (unlike Model)
// benefits from read-ahead.
type sequentialReader struct {
	r      *mmap.ReaderAt
	header Header
	bounds [3]bounds
	buf    [1 << 16]byte // any uint16 string length fits
}

func openSequential(path string) (*sequentialReader, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	sr := &sequentialReader{r: r}
	if err := sr.init(); err != nil {
		r.Close()
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return sr, nil
}

func (sr *sequentialReader) init() error {
	var b [HeaderSize]byte
	n, err := sr.r.ReadAt(b[:], 0)
	if err != nil && err != io.EOF {
		return err
	}
	h, err := DecodeHeader(b[:n])
	if err != nil {
		return err
	}
	bounds, err := sectionBounds(&h, uint64(sr.r.Len()))
	if err != nil {
		return err
	}
	var last [EntrySize]byte
	for i, sb := range bounds {
		if h.Counts[i] > 0 {
			if _, err := sr.r.ReadAt(last[:], int64(sb.tableEnd-EntrySize)); err != nil {
				return err
			}
		}
		if err := checkBlobEnd(Arity(i+1), h.Counts[i], last[:], sb.end-sb.tableEnd); err != nil {
			return err
		}
	}
	sr.header = h
	sr.bounds = bounds
	return nil
}

func (sr *sequentialReader) Close() error {
	return sr.r.Close()
}

// each calls fn for every entry in the section for a, in file order. text is
// only valid until fn returns.
func (sr *sequentialReader) each(a Arity, fn func(i uint64, e *Entry, text []byte) error) error {
	b := sr.bounds[a-1]
	entries := bufio.NewReaderSize(&io.LimitedReader{
		R: &mmapReader{r: sr.r, off: int64(b.start)},
		N: int64(b.tableEnd - b.start),
	}, 1<<16)
	blobLen := b.end - b.tableEnd
	var (
		eb [EntrySize]byte
		e  Entry
	)
	for i := uint64(0); i < sr.header.Count(a); i++ {
		if _, err := io.ReadFull(entries, eb[:]); err != nil {
			return err
		}
		e.Unmarshal(eb[:])
		end := uint64(e.StringOffset) + uint64(e.StringLen)
		if end > blobLen {
			return xerrors.Errorf("%v entry %d: string [%d, %d) outside of blob [0, %d): %w",
				a, i, e.StringOffset, end, blobLen, ErrCorrupt)
		}
		text := sr.buf[:e.StringLen]
		if _, err := sr.r.ReadAt(text, int64(b.tableEnd)+int64(e.StringOffset)); err != nil {
			return err
		}
		if err := fn(i, &e, text); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes the section for a of the model at path to w, in the
// "ngram<TAB>count" format accepted by BuildStreaming.
func Dump(path string, a Arity, w io.Writer) error {
	if !a.valid() {
		return xerrors.Errorf("invalid arity %d", int(a))
	}
	sr, err := openSequential(path)
	if err != nil {
		return err
	}
	defer sr.Close()
	bufw := bufio.NewWriter(w)
	var line []byte
	if err := sr.each(a, func(_ uint64, e *Entry, text []byte) error {
		line = append(line[:0], text...)
		line = append(line, '\t')
		line = strconv.AppendUint(line, e.Count, 10)
		line = append(line, '\n')
		_, err := bufw.Write(line)
		return err
	}); err != nil {
		return err
	}
	return bufw.Flush()
}

// A VerifyReport summarizes a successful Verify run.
type VerifyReport struct {
	Header Header

	// StringBytes is the total text length of all entries, indexed by
	// Arity-1.
	StringBytes [3]uint64
}

// Verify checks that every section of the model at path is strictly
// ascending, that all entries point into their section's string blob and
// that reserved fields are zero. Unlike Open, it reads the entire file.
func Verify(path string) (*VerifyReport, error) {
	sr, err := openSequential(path)
	if err != nil {
		return nil, err
	}
	defer sr.Close()
	report := &VerifyReport{Header: sr.header}
	var prev []byte
	for _, a := range arities {
		prev = prev[:0]
		err := sr.each(a, func(i uint64, e *Entry, text []byte) error {
			if e.Reserved != 0 {
				return xerrors.Errorf("%v entry %d: reserved field is %#x: %w", a, i, e.Reserved, ErrCorrupt)
			}
			if i > 0 && bytes.Compare(prev, text) >= 0 {
				return xerrors.Errorf("%v entry %d: %q follows %q: %w", a, i, text, prev, ErrUnsorted)
			}
			prev = append(prev[:0], text...)
			report.StringBytes[a-1] += uint64(len(text))
			return nil
		})
		if err != nil {
			return nil, xerrors.Errorf("%s: %w", path, err)
		}
	}
	return report, nil
}
