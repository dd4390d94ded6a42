// pkg/chunk/mmap_unix.go

//go:build unix

package chunk

import (
	"os"

	"golang.org/x/sys/unix"
)

var pageMask = int64(unix.Getpagesize() - 1)

// mmap maps [off, off+length) of f read-only. The kernel only accepts page
// aligned offsets, so the mapping starts at the aligned offset and data is
// the requested window inside it.
func mmap(f *os.File, off int64, length int) (mapping, data []byte, err error) {
	aligned := off &^ pageMask
	delta := int(off - aligned)
	mapping, err = unix.Mmap(int(f.Fd()), aligned, length+delta, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return mapping, mapping[delta : delta+length], nil
}

func munmap(mapping []byte) error {
	return unix.Munmap(mapping)
}
