package mapper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"BigText/pkg/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text   string
	writes int
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	c.writes++
	return nil
}

func TestSelection(t *testing.T) {
	m, _ := openMapper(t, "hello\nworld\n", DefaultConfig())
	clip := &fakeClipboard{}
	m.SetClipboard(clip)

	assert.False(t, m.HasSelection())
	assert.Equal(t, int64(0), m.SelectionSize())
	require.NoError(t, m.CopyToClipboard())
	assert.Equal(t, 0, clip.writes)

	m.SetPosAbsolute(0, 2, MoveAnchor)
	m.SetPosAbsolute(1, 3, KeepAnchor)
	assert.Equal(t, CursorPos{Line: 0, Col: 2}, m.Anchor())
	assert.Equal(t, CursorPos{Line: 1, Col: 3}, m.Position())
	assert.Equal(t, int64(7), m.SelectionSize())
	text, err := m.SelectedText()
	require.NoError(t, err)
	assert.Equal(t, "llo\nwor", text)
	require.NoError(t, m.CopyToClipboard())
	assert.Equal(t, "llo\nwor", clip.text)

	// backwards
	m.SetPosAbsolute(1, 3, MoveAnchor)
	m.SetPosAbsolute(0, 2, KeepAnchor)
	assert.Equal(t, int64(7), m.SelectionSize())
	text, err = m.SelectedText()
	require.NoError(t, err)
	assert.Equal(t, "llo\nwor", text)
}

func TestSetPosClamps(t *testing.T) {
	m, _ := openMapper(t, "hello\nworld\n", DefaultConfig())
	m.SetPosAbsolute(-3, -1, MoveAnchor)
	assert.Equal(t, CursorPos{}, m.Position())

	m.SetPosAbsolute(100, 50, KeepAnchor)
	assert.Equal(t, CursorPos{Line: 1, Col: 50}, m.Position())
	assert.Equal(t, int64(11), m.SelectionSize())
	text, err := m.SelectedText()
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)
}

func TestSetPosRelative(t *testing.T) {
	content, _ := numberedLines(60, 10)
	m, sched := openMapper(t, content, testConfig())
	sched.RunAll(1000)
	m.SetVisibleLineCount(10)
	m.MoveVisibleTopLine(20)

	var moves []PositionChangedPayload
	m.OnPositionChanged(func(p PositionChangedPayload) { moves = append(moves, p) })

	m.SetPosRelative(2, 1, MoveAnchor)
	assert.Equal(t, CursorPos{Line: 22, Col: 1}, m.Position())
	assert.Equal(t, m.Position(), m.Anchor())
	m.SetPosRelative(4, 0, KeepAnchor)
	assert.Equal(t, CursorPos{Line: 24}, m.Position())
	assert.Equal(t, CursorPos{Line: 22, Col: 1}, m.Anchor())
	m.SetPosRelative(4, 0, KeepAnchor)
	assert.Len(t, moves, 2)
}

func TestSetPosDoesNotMapChunks(t *testing.T) {
	content, _ := numberedLines(60, 10)
	m, sched := openMapper(t, content, testConfig())
	sched.RunAll(1000)
	require.Equal(t, int64(0), m.CachedMemory())

	m.SetPosAbsolute(50, 1, KeepAnchor)
	assert.Equal(t, int64(0), m.CachedMemory())

	assert.Greater(t, m.SelectionSize(), int64(0))
	assert.Greater(t, m.CachedMemory(), int64(0))
}

func TestSelectionCRLF(t *testing.T) {
	m, _ := openMapper(t, "ab\r\ncd\r\n", DefaultConfig())
	m.SetPosAbsolute(0, 1, MoveAnchor)
	m.SetPosAbsolute(1, 1, KeepAnchor)
	assert.Equal(t, int64(4), m.SelectionSize())
	text, err := m.SelectedText()
	require.NoError(t, err)
	assert.Equal(t, "b\nc", text)
}

func TestSelectionTooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("writes a 10 MB file")
	}
	line := append(bytes.Repeat([]byte("x"), 99), '\n')
	path := filepath.Join(t.TempDir(), "big.lst")
	require.NoError(t, os.WriteFile(path, bytes.Repeat(line, 100000), 0644))

	sched := loop.NewManual()
	m := New(DefaultConfig(), sched)
	require.NoError(t, m.OpenFile(path))
	defer m.CloseAndReset()
	sched.RunAll(1000)
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	require.True(t, exact)
	require.Equal(t, int64(100000), lines)

	clip := &fakeClipboard{}
	m.SetClipboard(clip)
	m.SetPosAbsolute(0, 0, MoveAnchor)
	m.SetPosAbsolute(99999, 99, KeepAnchor)
	assert.Equal(t, SelectionTooLarge, m.SelectionSize())
	assert.ErrorIs(t, m.CopyToClipboard(), ErrSelectionTooLarge)
	assert.Equal(t, 0, clip.writes)

	m.SetPosAbsolute(10, 5, KeepAnchor)
	assert.Equal(t, int64(1005), m.SelectionSize())
	require.NoError(t, m.CopyToClipboard())
	assert.Equal(t, 11, strings.Count(clip.text, "\n")+1)
}

func TestResetMovesToTop(t *testing.T) {
	content, _ := numberedLines(60, 10)
	m, sched := openMapper(t, content, testConfig())
	sched.RunAll(1000)
	m.MoveVisibleTopLine(40)
	m.SetPosAbsolute(45, 2, MoveAnchor)
	require.NotEqual(t, 0, m.ActiveChunk().Nr)

	m.Reset()
	assert.Equal(t, int64(0), m.VisibleTopLine())
	assert.Equal(t, CursorPos{}, m.Position())
	assert.Equal(t, 0, m.ActiveChunk().Nr)
}
