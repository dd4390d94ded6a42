// pkg/mapper/cursor.go

package mapper

import (
	"strings"

	"github.com/atotto/clipboard"
)

// SelectionTooLarge is returned by SelectionSize for selections at or
// above Config.ClipboardLimit.
const SelectionTooLarge int64 = -1

// CursorPos is an absolute position: a line of the file and a byte column
// in that line's text.
type CursorPos struct {
	Line int64
	Col  int
}

// MoveMode selects whether setting the position also moves the anchor.
type MoveMode int

const (
	MoveAnchor MoveMode = iota
	KeepAnchor
)

type cursor struct {
	CursorPos
	// file offset and length of the line, lineStart is -1 until resolved
	lineStart int64
	lineLen   int
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SetClipboard replaces the system clipboard, e.g. in tests.
func (m *FileMapper) SetClipboard(c Clipboard) {
	m.clip = c
}

// Position returns the cursor position.
func (m *FileMapper) Position() CursorPos {
	return m.pos.CursorPos
}

// Anchor returns the selection anchor.
func (m *FileMapper) Anchor() CursorPos {
	return m.anchor.CursorPos
}

// HasSelection reports whether position and anchor differ.
func (m *FileMapper) HasSelection() bool {
	return m.pos.CursorPos != m.anchor.CursorPos
}

// SetPosAbsolute moves the cursor to an absolute line and column. The line
// is limited to the known lines. No chunk is mapped for this.
func (m *FileMapper) SetPosAbsolute(line int64, col int, mode MoveMode) {
	if last := m.KnownLineNrs() - 1; line > last {
		line = last
	}
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	oldPos, oldAnchor := m.pos.CursorPos, m.anchor.CursorPos
	hadSelection := m.HasSelection()

	m.pos = m.locate(CursorPos{Line: line, Col: col})
	if mode == MoveAnchor {
		m.anchor = m.pos
	}

	if m.pos.CursorPos != oldPos || m.anchor.CursorPos != oldAnchor {
		m.emitPosition()
		if hadSelection || m.HasSelection() {
			m.emitSelection()
		}
	}
}

// SetPosRelative moves the cursor to a viewport row and column.
func (m *FileMapper) SetPosRelative(localRow int, col int, mode MoveMode) {
	m.SetPosAbsolute(m.topLine+int64(localRow), col, mode)
}

// locate fills the file offset of p from a chunk that is mapped already.
func (m *FileMapper) locate(p CursorPos) cursor {
	c := cursor{CursorPos: p, lineStart: -1}
	if nr, local, ok := m.findChunk(p.Line); ok {
		if ch := m.peekChunk(nr); ch != nil {
			c.lineStart, c.lineLen = ch.LineStart(local), ch.LineLen(local)
		}
	}
	return c
}

// offset returns the file offset of c, mapping its chunk if needed.
func (m *FileMapper) offset(c *cursor) (int64, error) {
	if c.lineStart < 0 {
		ch, local, err := m.lineChunk(c.Line)
		if err != nil {
			return 0, err
		}
		c.lineStart, c.lineLen = ch.LineStart(local), ch.LineLen(local)
	}
	col := c.Col
	if col > c.lineLen {
		col = c.lineLen
	}
	return c.lineStart + int64(col), nil
}

// SelectionSize returns the number of file bytes between anchor and
// position, or SelectionTooLarge.
func (m *FileMapper) SelectionSize() int64 {
	if !m.HasSelection() || m.src == nil {
		return 0
	}
	from, err := m.offset(&m.anchor)
	if err != nil {
		m.log.Warnf("selection anchor: %s", err)
		return 0
	}
	to, err := m.offset(&m.pos)
	if err != nil {
		m.log.Warnf("selection position: %s", err)
		return 0
	}
	size := to - from
	if size < 0 {
		size = -size
	}
	if size >= m.conf.ClipboardLimit {
		return SelectionTooLarge
	}
	return size
}

// SelectedText returns the selection with lines joined by "\n".
func (m *FileMapper) SelectedText() (string, error) {
	if !m.HasSelection() {
		return "", nil
	}
	if m.SelectionSize() == SelectionTooLarge {
		return "", ErrSelectionTooLarge
	}
	from, to := m.anchor.CursorPos, m.pos.CursorPos
	if to.Line < from.Line || (to.Line == from.Line && to.Col < from.Col) {
		from, to = to, from
	}
	var sb strings.Builder
	for line := from.Line; line <= to.Line; line++ {
		text, err := m.Line(line)
		if err != nil {
			return "", err
		}
		start, end := 0, len(text)
		if line == from.Line {
			start = clamp(from.Col, 0, len(text))
		}
		if line == to.Line {
			end = clamp(to.Col, start, len(text))
		}
		sb.WriteString(text[start:end])
		if line < to.Line {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// CopyToClipboard copies the selection unless it is too large.
func (m *FileMapper) CopyToClipboard() error {
	text, err := m.SelectedText()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	return m.clip.WriteAll(text)
}

// Reset moves the viewport and the cursor back to the first line.
func (m *FileMapper) Reset() {
	m.topLine = 0
	if m.active != nil && m.active.Nr != 0 {
		m.SetActiveChunk(0)
	}
	m.SetPosAbsolute(0, 0, MoveAnchor)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
