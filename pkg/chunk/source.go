// pkg/chunk/source.go

package chunk

import (
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Source is a read-only file that chunks are mapped from. The OS handle is
// opened on demand and closed again once no mapping was requested for the
// idle period; pages mapped before stay valid.
type Source struct {
	sync.Mutex
	path  string
	size  int64
	idle  time.Duration
	file  *os.File
	timer *time.Timer
	opens int
}

// OpenSource checks that path is a readable regular file and records its size.
func OpenSource(path string, idle time.Duration) (*Source, error) {
	s := &Source{path: path, idle: idle}
	s.Lock()
	defer s.Unlock()
	if err := s.open(); err != nil {
		return nil, err
	}
	fi, err := s.file.Stat()
	if err != nil {
		s.closeFile()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if fi.IsDir() {
		s.closeFile()
		return nil, errors.Errorf("%s is a directory", path)
	}
	s.size = fi.Size()
	s.touch()
	return s, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Size() int64 {
	s.Lock()
	defer s.Unlock()
	return s.size
}

// Refresh re-reads the file size, e.g. after the file was appended to.
func (s *Source) Refresh() (int64, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", s.path)
	}
	s.Lock()
	defer s.Unlock()
	s.size = fi.Size()
	return s.size, nil
}

// Map maps length bytes starting at off.
func (s *Source) Map(off int64, length int) (*Page, error) {
	s.Lock()
	defer s.Unlock()
	if off < 0 || length <= 0 || off+int64(length) > s.size {
		return nil, errors.Errorf("invalid range [%d, %d) of %s (size %d)", off, off+int64(length), s.path, s.size)
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	defer s.touch()
	mapping, data, err := mmap(s.file, off, length)
	if err != nil {
		return nil, errors.Wrapf(err, "map [%d, %d) of %s", off, off+int64(length), s.path)
	}
	return newMappedPage(mapping, data), nil
}

// IsOpen reports whether the OS handle is currently held.
func (s *Source) IsOpen() bool {
	s.Lock()
	defer s.Unlock()
	return s.file != nil
}

// Opens counts how often the OS handle was (re)opened.
func (s *Source) Opens() int {
	s.Lock()
	defer s.Unlock()
	return s.opens
}

// Close stops the idle timer and releases the OS handle.
func (s *Source) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.closeFile()
}

// locked
func (s *Source) open() error {
	if s.file != nil {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.path)
	}
	s.file = f
	s.opens++
	return nil
}

// locked
func (s *Source) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// locked
func (s *Source) touch() {
	if s.idle <= 0 {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.idle, s.closeIdle)
		return
	}
	s.timer.Reset(s.idle)
}

func (s *Source) closeIdle() {
	s.Lock()
	defer s.Unlock()
	if s.file != nil {
		logger.Debugf("close idle handle of %s", s.path)
		_ = s.closeFile()
	}
}
