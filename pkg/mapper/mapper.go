// pkg/mapper/mapper.go

package mapper

import (
	"math"
	"sort"

	"BigText/pkg/chunk"
	"BigText/pkg/loop"
	"BigText/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger = utils.GetLogger("bigtext")

// FileMapper presents a large file as a sequence of lines while keeping only
// a few chunks of it mapped. Line numbers of a chunk become known once it
// and all chunks before it were indexed, either while scrolling or by the
// background prober.
//
// A FileMapper is not safe for concurrent use. All methods, and the
// callbacks of its scheduler, must run on the same goroutine.
type FileMapper struct {
	id    string
	conf  *Config
	sched loop.Scheduler
	clip  Clipboard
	log   *logrus.Entry

	src    *chunk.Source
	size   int64
	layout chunk.Layout
	delim  chunk.Delimiter
	// lineNrs[k] is the number of lines in chunks 0..k
	lineNrs []int64
	// line counts of chunks indexed before all lower chunks were
	pending map[int]int
	active  *chunk.Chunk
	cache   *chunk.Cache
	// last chunk read through getChunk when the cache declined it
	spare *chunk.Chunk

	topLine      int64
	visibleLines int
	pos          cursor
	anchor       cursor

	probe prober
	signals
}

// New creates a mapper. Probing is scheduled on sched.
func New(conf *Config, sched loop.Scheduler) *FileMapper {
	if conf == nil {
		conf = DefaultConfig()
	}
	conf.Check()
	id := uuid.New().String()
	m := &FileMapper{
		id:           id,
		conf:         conf,
		sched:        sched,
		clip:         systemClipboard{},
		log:          logger.WithField("mapper", id[:8]),
		visibleLines: 1,
	}
	m.resetIndex()
	return m
}

// ID identifies the mapper in logs.
func (m *FileMapper) ID() string {
	return m.id
}

// OpenFile maps path and activates its first chunk.
func (m *FileMapper) OpenFile(path string) error {
	m.CloseAndReset()
	m.conf.Check()
	src, err := chunk.OpenSource(path, m.conf.IdleClose)
	if err != nil {
		return err
	}
	m.src = src
	m.size = src.Size()
	m.layout = chunk.Layout{ChunkSize: m.conf.ChunkSize, MaxLineWidth: m.conf.MaxLineWidth}
	m.cache = chunk.NewCache(m.conf.CacheChunks)
	m.resetIndex()
	m.probe.init(m.conf)
	if m.ChunkCount() > 0 && m.SetActiveChunk(0) == nil {
		m.closeSource()
		return errors.Errorf("map first chunk of %s", path)
	}
	m.log.Infof("open %s: %s in %d chunks", path, utils.FormatBytes(m.size), m.ChunkCount())
	m.SetPosAbsolute(0, 0, MoveAnchor)
	m.emitBlockCount()
	m.startProbe(m.conf.ProbeDelay)
	return nil
}

// Reload picks up size changes of the open file. Line numbers of chunks
// that lie completely before the old end are kept when the file grew.
func (m *FileMapper) Reload() error {
	if m.src == nil {
		return ErrNotOpen
	}
	oldSize, oldCount := m.size, m.ChunkCount()
	size, err := m.src.Refresh()
	if err != nil {
		return err
	}
	m.stopProbe()
	m.releaseChunks()
	m.size = size
	if size < oldSize {
		m.resetIndex()
	} else {
		keep := oldCount - 1
		if keep < 0 {
			keep = 0
		}
		if len(m.lineNrs) > keep {
			m.lineNrs = m.lineNrs[:keep]
		}
		m.pending = make(map[int]int)
	}
	m.log.Debugf("reload %s: %d -> %d bytes", m.src.Path(), oldSize, size)

	top, pos, anchor := m.topLine, m.pos.CursorPos, m.anchor.CursorPos
	m.topLine = 0
	if m.ChunkCount() > 0 && m.SetActiveChunk(0) == nil {
		return errors.Errorf("map first chunk of %s", m.src.Path())
	}
	m.MoveVisibleTopLine(top)
	m.SetPosAbsolute(anchor.Line, anchor.Col, MoveAnchor)
	m.SetPosAbsolute(pos.Line, pos.Col, KeepAnchor)
	m.emitBlockCount()
	m.startProbe(m.conf.ProbeDelay)
	return nil
}

// CloseAndReset releases all chunks, closes the file and resets the view.
func (m *FileMapper) CloseAndReset() {
	m.stopProbe()
	if m.src != nil {
		m.log.Debugf("close %s", m.src.Path())
	}
	m.closeSource()
	m.size = 0
	m.delim = chunk.Delimiter{}
	m.resetIndex()
	m.Reset()
}

func (m *FileMapper) closeSource() {
	m.releaseChunks()
	if m.src != nil {
		if err := m.src.Close(); err != nil {
			m.log.Warnf("close %s: %s", m.src.Path(), err)
		}
		m.src = nil
	}
}

func (m *FileMapper) releaseChunks() {
	if m.active != nil {
		m.active.Release()
		m.active = nil
	}
	m.dropSpare()
	if m.cache != nil {
		m.cache.Clear()
	}
}

func (m *FileMapper) resetIndex() {
	m.lineNrs = m.lineNrs[:0]
	m.pending = make(map[int]int)
}

// IsOpen reports whether a file is open.
func (m *FileMapper) IsOpen() bool {
	return m.src != nil
}

// Path returns the open file or "".
func (m *FileMapper) Path() string {
	if m.src == nil {
		return ""
	}
	return m.src.Path()
}

// Size returns the file size in bytes.
func (m *FileMapper) Size() int64 {
	return m.size
}

// ChunkCount returns the number of chunks of the open file.
func (m *FileMapper) ChunkCount() int {
	if m.src == nil {
		return 0
	}
	return m.layout.Count(m.size)
}

// Delimiter returns the detected line break convention.
func (m *FileMapper) Delimiter() chunk.Delimiter {
	return m.delim
}

// CachedMemory returns the bytes mapped by non-active chunks.
func (m *FileMapper) CachedMemory() int64 {
	if m.cache == nil {
		return 0
	}
	return m.cache.UsedMemory()
}

// KnownLineNrs returns the number of lines whose line number is known.
func (m *FileMapper) KnownLineNrs() int64 {
	if len(m.lineNrs) == 0 {
		return 0
	}
	return m.lineNrs[len(m.lineNrs)-1]
}

func (m *FileMapper) lastChunkWithLineNr() int {
	return len(m.lineNrs) - 1
}

func (m *FileMapper) allKnown() bool {
	return len(m.lineNrs) >= m.ChunkCount()
}

// LineCount returns the number of lines of the file. While not all chunks
// are indexed, exact is false and lines is extrapolated from the indexed
// part. ErrFileTooLarge is returned when the count exceeds Config.MaxLines.
func (m *FileMapper) LineCount() (lines int64, exact bool, err error) {
	n := len(m.lineNrs)
	switch {
	case m.allKnown():
		lines, exact = m.KnownLineNrs(), true
	case n > 0:
		covered := int64(n) * m.layout.ChunkSize
		lines = int64(math.Ceil(float64(m.size) * float64(m.lineNrs[n-1]) / float64(covered)))
	case m.active != nil && m.active.Len() > 0:
		lines = int64(math.Ceil(float64(m.size) * float64(m.active.LineCount()) / float64(m.active.Len())))
	}
	if lines > m.conf.MaxLines {
		return lines, exact, errors.Wrapf(ErrFileTooLarge, "%s has more than %d lines", m.Path(), m.conf.MaxLines)
	}
	return lines, exact, nil
}

// LoadAmount returns the indexed fraction of the file's lines.
func (m *FileMapper) LoadAmount() float64 {
	if m.allKnown() {
		return 1
	}
	lines, _, _ := m.LineCount()
	if lines <= 0 {
		return 0
	}
	f := float64(m.KnownLineNrs()) / float64(lines)
	if f > 1 {
		f = 1
	}
	return f
}

func (m *FileMapper) startLine(nr int) int64 {
	if nr == 0 {
		return 0
	}
	if nr-1 < len(m.lineNrs) {
		return m.lineNrs[nr-1]
	}
	return -1
}

func (m *FileMapper) record(c *chunk.Chunk) {
	nr := c.Nr
	switch {
	case nr < len(m.lineNrs):
	case nr == len(m.lineNrs):
		m.lineNrs = append(m.lineNrs, m.startLine(nr)+int64(c.LineCount()))
		for {
			next := len(m.lineNrs)
			lines, ok := m.pending[next]
			if !ok {
				break
			}
			delete(m.pending, next)
			m.lineNrs = append(m.lineNrs, m.lineNrs[next-1]+int64(lines))
		}
	default:
		m.pending[nr] = c.LineCount()
	}
	c.StartLine = m.startLine(nr)
	if m.active != nil && m.active.StartLine < 0 {
		m.active.StartLine = m.startLine(m.active.Nr)
	}
}

func (m *FileMapper) loadChunk(nr int) *chunk.Chunk {
	prev := m.delim
	c, err := chunk.Load(m.src, nr, m.layout, &m.delim)
	if err != nil {
		m.log.Warnf("chunk %d unavailable: %s", nr, err)
		return nil
	}
	if c == nil {
		m.log.Debugf("chunk %d is beyond the end of %s", nr, m.src.Path())
		return nil
	}
	if m.delim != prev {
		m.recount(c)
	}
	m.record(c)
	return c
}

// recount drops the line counts taken before the delimiter changed to
// m.delim. The active chunk is indexed again, all others are recounted
// when they are next loaded. except is indexed already.
func (m *FileMapper) recount(except *chunk.Chunk) {
	if len(m.lineNrs) == 0 && len(m.pending) == 0 {
		return
	}
	m.log.Infof("%s uses %s line breaks, counting lines again", m.src.Path(), m.delim)
	m.cache.Clear()
	m.dropSpare()
	m.resetIndex()
	if m.active != nil && m.active != except {
		if err := m.active.Reindex(m.delim); err != nil {
			m.log.Warnf("reindex chunk %d: %s", m.active.Nr, err)
		}
		m.active.StartLine = -1
		m.record(m.active)
	}
	m.pos = m.locate(m.pos.CursorPos)
	m.anchor = m.locate(m.anchor.CursorPos)
}

func (m *FileMapper) dropSpare() {
	if m.spare != nil {
		m.spare.Release()
		m.spare = nil
	}
}

// getChunk returns chunk nr for reading. The result stays valid until the
// next call that maps another chunk; callers copy out what they need.
func (m *FileMapper) getChunk(nr int) *chunk.Chunk {
	if m.src == nil {
		return nil
	}
	if m.active != nil && m.active.Nr == nr {
		return m.active
	}
	if c := m.cache.Get(nr); c != nil {
		c.StartLine = m.startLine(nr)
		return c
	}
	if m.spare != nil && m.spare.Nr == nr {
		m.spare.StartLine = m.startLine(nr)
		return m.spare
	}
	c := m.loadChunk(nr)
	if c == nil {
		return nil
	}
	if m.cache.Put(c) {
		c.Release()
	} else {
		m.dropSpare()
		m.spare = c
	}
	return c
}

// peekChunk returns chunk nr only if it is mapped already.
func (m *FileMapper) peekChunk(nr int) *chunk.Chunk {
	if m.active != nil && m.active.Nr == nr {
		return m.active
	}
	if m.spare != nil && m.spare.Nr == nr {
		return m.spare
	}
	if m.cache != nil {
		return m.cache.Get(nr)
	}
	return nil
}

// findChunk locates an absolute line among the chunks with known line numbers.
func (m *FileMapper) findChunk(line int64) (nr int, local int, ok bool) {
	if line < 0 {
		return -1, 0, false
	}
	n := len(m.lineNrs)
	k := sort.Search(n, func(i int) bool { return m.lineNrs[i] > line })
	if k == n {
		return -1, 0, false
	}
	return k, int(line - m.startLine(k)), true
}

// lineChunk returns the chunk holding line and the line's local index,
// indexing further chunks when line lies beyond the known lines.
func (m *FileMapper) lineChunk(line int64) (*chunk.Chunk, int, error) {
	if m.src == nil {
		return nil, 0, ErrNotOpen
	}
	for {
		if nr, local, ok := m.findChunk(line); ok {
			c := m.getChunk(nr)
			if c == nil {
				return nil, 0, errors.Errorf("chunk %d of %s is unavailable", nr, m.src.Path())
			}
			return c, local, nil
		}
		next := len(m.lineNrs)
		if line < 0 || next >= m.ChunkCount() {
			return nil, 0, errors.Wrapf(ErrOutOfRange, "line %d", line)
		}
		if m.getChunk(next) == nil || len(m.lineNrs) == next {
			return nil, 0, errors.Errorf("chunk %d of %s is unavailable", next, m.src.Path())
		}
	}
}

// Line returns a copy of the text of an absolute line.
func (m *FileMapper) Line(line int64) (string, error) {
	c, local, err := m.lineChunk(line)
	if err != nil {
		return "", err
	}
	return c.LineText(local)
}
