// Package mmap maps model files read-only into memory.
package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// A File is a read-only mapping of an entire file. Data must not be used
// after Close.
type File struct {
	Data []byte
	orig []byte
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	size := st.Size()
	if int64(int(size+4095)) != size+4095 {
		return nil, fmt.Errorf("%s: too large for mmap", path)
	}
	n := int(size)
	if n == 0 {
		return &File{}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, (n+4095)&^4095, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %v", path, err)
	}
	return &File{
		Data: data[:n],
		orig: data,
	}, nil
}

// AdviseRandom tells the kernel that the mapping will be accessed in random
// order (binary searches), which disables read-ahead.
func (f *File) AdviseRandom() error {
	if f.orig == nil {
		return nil
	}
	return unix.Madvise(f.orig, unix.MADV_RANDOM)
}

func (f *File) Close() error {
	if f.orig == nil {
		return nil
	}
	data := f.orig
	f.Data, f.orig = nil, nil
	return unix.Munmap(data)
}
