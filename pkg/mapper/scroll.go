// pkg/mapper/scroll.go

package mapper

import (
	"math"

	"BigText/pkg/chunk"
	"github.com/pkg/errors"
)

// SetActiveChunk makes chunk nr the one backing the viewport. The previous
// active chunk is unmapped. If nr cannot be mapped nil is returned and the
// previous chunk stays active.
func (m *FileMapper) SetActiveChunk(nr int) *chunk.Chunk {
	if m.src == nil {
		return nil
	}
	if m.active != nil && m.active.Nr == nr {
		return m.active
	}
	c := m.cache.Take(nr)
	if c == nil && m.spare != nil && m.spare.Nr == nr {
		c, m.spare = m.spare, nil
	}
	if c == nil {
		c = m.loadChunk(nr)
	}
	if c == nil {
		if m.active != nil {
			m.log.Warnf("keep chunk %d active, chunk %d is unavailable", m.active.Nr, nr)
		}
		return nil
	}
	if m.active != nil {
		m.active.Release()
	}
	c.StartLine = m.startLine(nr)
	m.active = c
	return c
}

// ActiveChunk returns the chunk backing the viewport, or nil.
func (m *FileMapper) ActiveChunk() *chunk.Chunk {
	return m.active
}

// SetVisibleLineCount sets the number of rows of the viewport.
func (m *FileMapper) SetVisibleLineCount(n int) {
	if n < 1 {
		n = 1
	}
	m.visibleLines = n
}

func (m *FileMapper) VisibleLineCount() int {
	return m.visibleLines
}

// VisibleTopLine returns the absolute line shown in the first row.
func (m *FileMapper) VisibleTopLine() int64 {
	return m.topLine
}

func (m *FileMapper) maxTopLine() int64 {
	var last int64
	if m.allKnown() {
		last = m.KnownLineNrs() - int64(m.visibleLines)
	} else {
		last = m.KnownLineNrs() - 1
	}
	if last < 0 {
		last = 0
	}
	return last
}

// MoveVisibleTopLine scrolls the viewport by delta lines and activates the
// chunk holding the new top line. Scrolling beyond the known lines stops at
// the last known line and keeps the prober running. It returns false if the
// top line did not change.
func (m *FileMapper) MoveVisibleTopLine(delta int64) bool {
	if m.src == nil {
		return false
	}
	target := m.topLine + delta
	if delta > 0 && target < m.topLine {
		target = math.MaxInt64
	}
	if limit := m.maxTopLine(); target > limit {
		target = limit
		if !m.allKnown() {
			m.startProbe(m.conf.ProbeInterval)
		}
	}
	if target < 0 {
		target = 0
	}
	if nr, _, ok := m.findChunk(target); ok && (m.active == nil || m.active.Nr != nr) {
		if m.SetActiveChunk(nr) == nil {
			return false
		}
	}
	changed := target != m.topLine
	m.topLine = target
	return changed
}

// Lines returns copies of count lines starting at viewport row localRow.
// Fewer lines are returned at the end of the file.
func (m *FileMapper) Lines(localRow, count int) ([]string, error) {
	if m.src == nil {
		return nil, ErrNotOpen
	}
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, err := m.Line(m.topLine + int64(localRow+i))
		if errors.Is(err, ErrOutOfRange) {
			break
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, s)
	}
	return lines, nil
}
