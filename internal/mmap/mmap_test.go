package mmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, size := range []int{0, 1, 4095, 4096, 4097, 3 * 4096} {
		want := bytes.Repeat([]byte{'x'}, size)
		path := filepath.Join(dir, "file")
		if err := os.WriteFile(path, want, 0644); err != nil {
			t.Fatal(err)
		}
		f, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%d bytes): %v", size, err)
		}
		if !bytes.Equal(f.Data, want) {
			t.Errorf("Open(%d bytes): got %d bytes of data", size, len(f.Data))
		}
		if err := f.AdviseRandom(); err != nil {
			t.Errorf("AdviseRandom(%d bytes): %v", size, err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
		if f.Data != nil {
			t.Errorf("Close() did not clear Data")
		}
		if err := f.Close(); err != nil {
			t.Errorf("second Close(): %v", err)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Errorf("Open(missing) = %v, want a not-exist error", err)
	}
	if _, err := Open(dir); err == nil {
		t.Errorf("Open(directory) unexpectedly succeeded")
	}
}
