// pkg/chunk/mmap_other.go

//go:build !unix

package chunk

import (
	"io"
	"os"
)

// mmap falls back to a heap copy where no mmap syscall is available.
func mmap(f *os.File, off int64, length int) (mapping, data []byte, err error) {
	buf := make([]byte, length)
	if _, err = f.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return nil, buf, nil
}

func munmap(mapping []byte) error {
	return nil
}
