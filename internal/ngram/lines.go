package ngram

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

// minReadBuffer is large enough for any line containing a storable n-gram.
const minReadBuffer = 4096

// lineReader reads newline-terminated lines with bounded memory: lines
// which do not fit into the buffer are consumed and reported as overlong
// instead of being returned.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader, size int) *lineReader {
	if size < minReadBuffer {
		size = minReadBuffer
	}
	return &lineReader{r: bufio.NewReaderSize(r, size)}
}

// next returns the next line without its line terminator. The returned
// slice is only valid until the next call. At the end of the input, next
// returns io.EOF.
func (lr *lineReader) next() (line []byte, overlong bool, err error) {
	line, err = lr.r.ReadSlice('\n')
	switch err {
	case nil:
	case bufio.ErrBufferFull:
		return nil, true, lr.discardLine()
	case io.EOF:
		if len(line) == 0 {
			return nil, false, io.EOF
		}
	default:
		return nil, false, err
	}
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, false, nil
}

func (lr *lineReader) discardLine() error {
	for {
		_, err := lr.r.ReadSlice('\n')
		switch err {
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}

// parseRecord parses an "ngram<TAB>count" line. The last TAB separates the
// count. Records which could not be stored in a model are rejected.
func parseRecord(line []byte) (text []byte, count uint64, ok bool) {
	tab := bytes.LastIndexByte(line, '\t')
	if tab == -1 {
		return nil, 0, false
	}
	count, err := strconv.ParseUint(string(line[tab+1:]), 10, 64)
	if err != nil || count == 0 {
		return nil, 0, false
	}
	text = line[:tab]
	if !validNgram(text) {
		return nil, 0, false
	}
	return text, count, true
}
