package ngram

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEntryLittleEndian(t *testing.T) {
	got := EncodeEntry(0x01020304, 0x0506, 0x0708090a0b0c0d0e)
	want := [EntrySize]byte{
		0x04, 0x03, 0x02, 0x01, // string_offset
		0x06, 0x05, // string_len
		0x00, 0x00, // reserved
		0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08, 0x07, // count
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("EncodeEntry: unexpected diff (-want +got):\n%s", diff)
	}
	e, err := DecodeEntry(got[:])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Entry{StringOffset: 0x01020304, StringLen: 0x0506, Count: 0x0708090a0b0c0d0e}, e); diff != "" {
		t.Fatalf("DecodeEntry: unexpected diff (-want +got):\n%s", diff)
	}
}

func TestHeader(t *testing.T) {
	h, size := layout([3]uint64{4, 3, 2}, [3]uint64{20, 30, 28}, 10000)
	want := Header{
		Version:     Version,
		Counts:      [3]uint64{4, 3, 2},
		TotalTokens: 10000,
		Offsets: [3]uint64{
			HeaderSize,
			HeaderSize + 4*EntrySize + 20,
			HeaderSize + 4*EntrySize + 20 + 3*EntrySize + 30,
		},
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("layout: unexpected diff (-want +got):\n%s", diff)
	}
	if want := want.Offsets[2] + 2*EntrySize + 28; size != want {
		t.Fatalf("layout: file size = %d, want %d", size, want)
	}

	for _, a := range []Arity{0, 4, -1} {
		if got := h.Count(a); got != 0 {
			t.Errorf("Count(%d) = %d, want 0", int(a), got)
		}
		if got := h.Offset(a); got != 0 {
			t.Errorf("Offset(%d) = %d, want 0", int(a), got)
		}
	}
	if got, want := h.Count(Bigram), uint64(3); got != want {
		t.Errorf("Count(Bigram) = %d, want %d", got, want)
	}

	b := EncodeHeader(h)
	if got := len(b); got != 60 {
		t.Fatalf("len(EncodeHeader()) = %d, want 60", got)
	}
	got, err := DecodeHeader(b[:])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Fatalf("DecodeHeader: unexpected diff (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	h, _ := layout([3]uint64{}, [3]uint64{}, 0)
	valid := EncodeHeader(h)

	unknown := valid
	encoding.PutUint32(unknown[:], Version+1)

	for _, tt := range []struct {
		name string
		fn   func() error
		want error
	}{
		{
			name: "header empty",
			fn:   func() error { _, err := DecodeHeader(nil); return err },
			want: ErrTruncated,
		},
		{
			name: "header short",
			fn:   func() error { _, err := DecodeHeader(valid[:HeaderSize-1]); return err },
			want: ErrTruncated,
		},
		{
			name: "header version",
			fn:   func() error { _, err := DecodeHeader(unknown[:]); return err },
			want: ErrUnsupportedVersion,
		},
		{
			name: "entry short",
			fn:   func() error { _, err := DecodeEntry(make([]byte, EntrySize-1)); return err },
			want: ErrTruncated,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidNgram(t *testing.T) {
	long := make([]byte, MaxNgramLen)
	for i := range long {
		long[i] = 'a'
	}
	for _, tt := range []struct {
		text string
		want bool
	}{
		{"their", true},
		{"to their house", true},
		{"", false},
		{string(long), false},
		{string(long[:MaxNgramLen-1]), true},
		{"tab\there", false},
		{"line\nbreak", false},
		{"carriage\rreturn", false},
		{"naïve", true},
	} {
		if got := validNgram(tt.text); got != tt.want {
			t.Errorf("validNgram(%q) = %v, want %v", tt.text, got, tt.want)
		}
		if got := validNgram([]byte(tt.text)); got != tt.want {
			t.Errorf("validNgram([]byte(%q)) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseArity(t *testing.T) {
	for _, s := range []string{"1", "unigram", "2", "bigrams", "3", "trigram"} {
		a, err := ParseArity(s)
		if err != nil {
			t.Errorf("ParseArity(%q): %v", s, err)
			continue
		}
		if !a.valid() {
			t.Errorf("ParseArity(%q) = %v, which is not valid", s, a)
		}
	}
	if _, err := ParseArity("4"); err == nil {
		t.Errorf("ParseArity(4) unexpectedly succeeded")
	}
}
