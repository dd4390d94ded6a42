// pkg/chunk/chunk.go

package chunk

import (
	"bytes"

	"BigText/pkg/utils"
	"github.com/pkg/errors"
)

var logger = utils.GetLogger("bigtext")

// ErrReleased is returned when a released chunk is read.
var ErrReleased = errors.New("chunk is already released")

// Layout describes how a file is cut into chunks.
type Layout struct {
	ChunkSize    int64
	MaxLineWidth int64
}

// Count returns the number of chunks a file of size bytes is cut into.
func (l Layout) Count(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + l.ChunkSize - 1) / l.ChunkSize)
}

// Range returns the nominal start of chunk nr and the byte range that has
// to be mapped for it. The mapped range reaches back MaxLineWidth bytes so
// a line starting before the nominal boundary is complete.
func (l Layout) Range(nr int, size int64) (nominal, start, end int64, ok bool) {
	nominal = int64(nr) * l.ChunkSize
	if nr < 0 || nominal >= size {
		return nominal, 0, 0, false
	}
	start = nominal - l.MaxLineWidth
	if start < 0 {
		start = 0
	}
	end = nominal + l.ChunkSize
	if end > size {
		end = size
	}
	return nominal, start, end, true
}

// Chunk is one mapped slice of a file together with its line index.
// LineBytes holds offsets relative to BStart; line i spans
// [LineBytes[i], LineBytes[i+1]) including its delimiter.
type Chunk struct {
	Nr        int
	BStart    int64
	LineBytes []int
	// StartLine is the number of lines in all lower chunks, -1 if unknown.
	StartLine int64

	page    *Page
	delim   Delimiter
	nominal int64
	eof     bool
}

// Load maps and indexes chunk nr of src. It returns nil without an error
// when nr lies beyond the end of the file. If delim is not yet valid, or is
// CR, it is detected from the mapped bytes and updated in place; a CR guess
// gives way to LF or CRLF once a '\n' shows up.
func Load(src *Source, nr int, layout Layout, delim *Delimiter) (*Chunk, error) {
	size := src.Size()
	nominal, start, end, ok := layout.Range(nr, size)
	if !ok {
		return nil, nil
	}
	page, err := src.Map(start, int(end-start))
	if err != nil {
		return nil, err
	}
	if !delim.Valid() || *delim == CR {
		d, found := DetectDelimiter(page.Data)
		if !found && end == size && bytes.HasSuffix(page.Data, []byte{'\r'}) {
			// nothing follows a final \r
			d, found = CR, true
		}
		if found && d != *delim {
			*delim = d
			logger.Debugf("detected %s line breaks in chunk %d of %s", d, nr, src.Path())
		}
	}
	c := &Chunk{
		Nr:        nr,
		BStart:    start,
		StartLine: -1,
		page:      page,
		delim:     *delim,
		nominal:   nominal,
		eof:       end == size,
	}
	c.index(nominal)
	return c, nil
}

func (c *Chunk) index(nominal int64) {
	data := c.page.Data
	lines := []int{0}
	if c.delim.Valid() {
		lines = make([]int, 1, bytes.Count(data, []byte{c.delim.Char})+2)
		for off := 0; off < len(data); {
			i := bytes.IndexByte(data[off:], c.delim.Char)
			if i < 0 {
				break
			}
			next := off + i + 1
			if c.BStart+int64(next) <= nominal {
				// the line starting here reaches into this chunk
				lines[0] = next
			} else {
				lines = append(lines, next)
			}
			off = next
		}
	}
	if c.eof && lines[len(lines)-1] != len(data) {
		lines = append(lines, len(data)+1)
	}
	c.LineBytes = lines
}

// Reindex rebuilds the line index for another delimiter.
func (c *Chunk) Reindex(delim Delimiter) error {
	if c.Released() {
		return ErrReleased
	}
	c.delim = delim
	c.index(c.nominal)
	return nil
}

// LineCount returns the number of lines that end in this chunk.
func (c *Chunk) LineCount() int {
	return len(c.LineBytes) - 1
}

// Len returns the number of mapped bytes.
func (c *Chunk) Len() int {
	if c.page == nil {
		return 0
	}
	return len(c.page.Data)
}

// End returns the file offset behind the last mapped byte.
func (c *Chunk) End() int64 {
	return c.BStart + int64(c.Len())
}

// EOF reports whether the chunk reaches the end of the file.
func (c *Chunk) EOF() bool {
	return c.eof
}

// Delimiter returns the line break convention the chunk was indexed with.
func (c *Chunk) Delimiter() Delimiter {
	return c.delim
}

// LineStart returns the file offset of local line i.
func (c *Chunk) LineStart(i int) int64 {
	return c.BStart + int64(c.LineBytes[i])
}

func (c *Chunk) lineRange(i int) (int, int) {
	start, end := c.LineBytes[i], c.LineBytes[i+1]-1
	data := c.page.Data
	if end > len(data) {
		end = len(data)
	}
	if c.delim.Width > 1 && end < len(data) && end > start && data[end-1] == '\r' {
		end--
	}
	return start, end
}

// LineLen returns the length of local line i without its delimiter.
func (c *Chunk) LineLen(i int) int {
	start, end := c.lineRange(i)
	return end - start
}

// LineText returns a copy of local line i without its delimiter.
func (c *Chunk) LineText(i int) (string, error) {
	if c.page == nil || c.page.Released() {
		return "", ErrReleased
	}
	if i < 0 || i >= c.LineCount() {
		return "", errors.Errorf("line %d out of range [0, %d) in chunk %d", i, c.LineCount(), c.Nr)
	}
	start, end := c.lineRange(i)
	return string(c.page.Data[start:end]), nil
}

// Acquire adds a reference to the mapping.
func (c *Chunk) Acquire() {
	c.page.Acquire()
}

// Release drops a reference; the mapping is unmapped with the last one.
func (c *Chunk) Release() {
	if c.page != nil {
		c.page.Release()
	}
}

// Released reports whether the mapping is gone.
func (c *Chunk) Released() bool {
	return c.page == nil || c.page.Released()
}
