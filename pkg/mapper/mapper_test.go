package mapper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BigText/pkg/chunk"
	"BigText/pkg/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	conf := DefaultConfig()
	conf.ChunkSize = 16
	conf.MaxLineWidth = 32
	conf.IdleClose = 0
	conf.ProbeDelay = 10 * time.Millisecond
	conf.ProbeInterval = 5 * time.Millisecond
	return conf
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "listing.lst")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func openMapper(t *testing.T, content string, conf *Config) (*FileMapper, *loop.Manual) {
	t.Helper()
	sched := loop.NewManual()
	m := New(conf, sched)
	require.NoError(t, m.OpenFile(writeFile(t, content)))
	t.Cleanup(m.CloseAndReset)
	return m, sched
}

func numberedLines(n, width int) (string, []string) {
	var sb strings.Builder
	lines := make([]string, n)
	for i := range lines {
		s := strings.Repeat(string(rune('a'+i%26)), i%width)
		lines[i] = s
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String(), lines
}

func TestOpenSmallFile(t *testing.T) {
	m, _ := openMapper(t, "a\nb\nc\nd\n", DefaultConfig())

	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(4), lines)
	assert.Equal(t, int64(4), m.KnownLineNrs())
	assert.Equal(t, 1, m.ChunkCount())
	assert.Equal(t, Idle, m.ProbeState())
	require.NotNil(t, m.ActiveChunk())
	assert.Equal(t, 0, m.ActiveChunk().Nr)
}

func TestLastLineWithoutDelimiter(t *testing.T) {
	m, _ := openMapper(t, "a\nb", DefaultConfig())
	lines, _, err := m.LineCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), lines)
	s, err := m.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "b", s)
}

func TestEmptyFile(t *testing.T) {
	m, _ := openMapper(t, "", DefaultConfig())
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(0), lines)
	assert.Nil(t, m.ActiveChunk())
	_, err = m.Line(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestOpenMissingFile(t *testing.T) {
	m := New(testConfig(), loop.NewManual())
	assert.Error(t, m.OpenFile(filepath.Join(t.TempDir(), "missing")))
	assert.False(t, m.IsOpen())
}

func TestActivateChunkOutOfOrder(t *testing.T) {
	conf := testConfig()
	conf.ChunkSize = 8
	conf.MaxLineWidth = 8
	m, sched := openMapper(t, strings.Repeat("aaa\nbbb\n", 3), conf)
	require.Equal(t, 3, m.ChunkCount())
	assert.Equal(t, int64(2), m.KnownLineNrs())

	c := m.SetActiveChunk(2)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.LineCount())
	assert.Equal(t, int64(-1), c.StartLine)
	assert.Equal(t, int64(2), m.KnownLineNrs())
	_, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.False(t, exact)

	sched.RunAll(100)
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(6), lines)
	assert.Equal(t, int64(4), m.ActiveChunk().StartLine)
}

func TestLinesMatchFileForAnyChunkSize(t *testing.T) {
	content, want := numberedLines(80, 20)
	for _, size := range []int64{3, 7, 16, 100, 4096} {
		conf := testConfig()
		conf.ChunkSize = size
		m, sched := openMapper(t, content, conf)
		sched.RunAll(10000)

		lines, exact, err := m.LineCount()
		require.NoError(t, err)
		require.True(t, exact)
		require.Equal(t, int64(len(want)), lines, "chunk size %d", size)
		for i, w := range want {
			got, err := m.Line(int64(i))
			require.NoError(t, err)
			assert.Equal(t, w, got, "line %d, chunk size %d", i, size)
		}
	}
}

func TestLineCountTooLarge(t *testing.T) {
	conf := testConfig()
	conf.MaxLines = 3
	m, _ := openMapper(t, strings.Repeat("x\n", 10), conf)
	_, _, err := m.LineCount()
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCRLF(t *testing.T) {
	m, _ := openMapper(t, "first\r\nsecond\r\nthird", DefaultConfig())
	assert.Equal(t, chunk.CRLF, m.Delimiter())
	assert.Equal(t, byte('\n'), m.Delimiter().Char)
	got, err := m.Lines(0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestCloseAndReset(t *testing.T) {
	content, _ := numberedLines(50, 10)
	m, sched := openMapper(t, content, testConfig())
	require.Equal(t, Probing, m.ProbeState())
	m.MoveVisibleTopLine(2)

	m.CloseAndReset()
	assert.False(t, m.IsOpen())
	assert.Equal(t, Idle, m.ProbeState())
	assert.Nil(t, m.ActiveChunk())
	assert.Equal(t, int64(0), m.VisibleTopLine())
	assert.Equal(t, 0, sched.Pending())
	lines, _, err := m.LineCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), lines)
	_, err = m.Lines(0, 1)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, m.Reload(), ErrNotOpen)
}

func TestReloadAfterAppend(t *testing.T) {
	content, _ := numberedLines(30, 10)
	path := writeFile(t, content)
	sched := loop.NewManual()
	m := New(testConfig(), sched)
	require.NoError(t, m.OpenFile(path))
	defer m.CloseAndReset()
	sched.RunAll(1000)
	m.SetVisibleLineCount(5)
	m.MoveVisibleTopLine(10)
	require.Equal(t, int64(10), m.VisibleTopLine())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("tail one\ntail two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, m.Reload())
	assert.Equal(t, int64(10), m.VisibleTopLine())
	sched.RunAll(1000)
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(32), lines)
	s, err := m.Line(31)
	require.NoError(t, err)
	assert.Equal(t, "tail two", s)
}

func TestReloadAfterTruncate(t *testing.T) {
	content, _ := numberedLines(30, 10)
	path := writeFile(t, content)
	sched := loop.NewManual()
	m := New(testConfig(), sched)
	require.NoError(t, m.OpenFile(path))
	defer m.CloseAndReset()
	sched.RunAll(1000)
	m.MoveVisibleTopLine(20)

	require.NoError(t, os.WriteFile(path, []byte("x\ny\n"), 0644))
	require.NoError(t, m.Reload())
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(2), lines)
	assert.Equal(t, int64(1), m.VisibleTopLine())
}

func TestIdleCloseKeepsActiveChunk(t *testing.T) {
	content, want := numberedLines(40, 10)
	conf := testConfig()
	conf.IdleClose = 10 * time.Millisecond
	m, sched := openMapper(t, content, conf)
	sched.RunAll(1000)
	assert.Eventually(t, func() bool { return !m.src.IsOpen() }, time.Second, 2*time.Millisecond)

	s, err := m.Line(0)
	require.NoError(t, err)
	assert.Equal(t, want[0], s)
}

func TestScrollKeepsLastGoodChunkWhenMappingFails(t *testing.T) {
	content, want := numberedLines(40, 10)
	conf := testConfig()
	conf.IdleClose = 10 * time.Millisecond
	m, sched := openMapper(t, content, conf)
	sched.RunAll(1000)
	require.Eventually(t, func() bool { return !m.src.IsOpen() }, time.Second, 2*time.Millisecond)
	require.NoError(t, os.Remove(m.Path()))

	assert.False(t, m.MoveVisibleTopLine(30))
	assert.Equal(t, int64(0), m.VisibleTopLine())
	require.NotNil(t, m.ActiveChunk())
	assert.Equal(t, 0, m.ActiveChunk().Nr)
	s, err := m.Line(0)
	require.NoError(t, err)
	assert.Equal(t, want[0], s)
}

func TestCRLineBreakOnChunkBoundary(t *testing.T) {
	conf := testConfig()
	conf.ChunkSize = 4
	m, sched := openMapper(t, "abc\rdef\r", conf)
	sched.RunAll(100)

	assert.Equal(t, chunk.CR, m.Delimiter())
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(2), lines)
	got, err := m.Lines(0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, got)
}

func TestCRLinesMatchFileForAnyChunkSize(t *testing.T) {
	content, want := numberedLines(80, 20)
	content = strings.ReplaceAll(content, "\n", "\r")
	for size := int64(1); size <= 24; size++ {
		conf := testConfig()
		conf.ChunkSize = size
		m, sched := openMapper(t, content, conf)
		sched.RunAll(10000)

		require.Equal(t, chunk.CR, m.Delimiter(), "chunk size %d", size)
		lines, exact, err := m.LineCount()
		require.NoError(t, err)
		require.True(t, exact)
		require.Equal(t, int64(len(want)), lines, "chunk size %d", size)
		for i, w := range want {
			got, err := m.Line(int64(i))
			require.NoError(t, err)
			assert.Equal(t, w, got, "line %d, chunk size %d", i, size)
		}
	}
}

func TestStrayCRBeforeFirstLF(t *testing.T) {
	conf := testConfig()
	conf.ChunkSize = 8
	m, sched := openMapper(t, "ab\rcdefg"+"hi\njk\nlm\n", conf)
	assert.Equal(t, chunk.CR, m.Delimiter())
	m.SetPosAbsolute(0, 1, KeepAnchor)

	sched.RunAll(100)
	assert.Equal(t, chunk.LF, m.Delimiter())
	lines, exact, err := m.LineCount()
	require.NoError(t, err)
	assert.True(t, exact)
	assert.Equal(t, int64(3), lines)
	got, err := m.Lines(0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab\rcdefghi", "jk", "lm"}, got)
	assert.Equal(t, int64(1), m.SelectionSize())
}

func TestReadsWithoutCache(t *testing.T) {
	content, want := numberedLines(60, 10)
	m, sched := openMapper(t, content, testConfig())
	sched.RunAll(1000)
	m.cache = chunk.NewCache(0)

	for _, i := range []int64{40, 41, 12, 40} {
		got, err := m.Line(i)
		require.NoError(t, err)
		assert.Equal(t, want[i], got, "line %d", i)
	}
	assert.Equal(t, int64(0), m.CachedMemory())

	nr, _, ok := m.findChunk(40)
	require.True(t, ok)
	spare := m.spare
	require.NotNil(t, spare)
	require.Equal(t, nr, spare.Nr)
	assert.Same(t, spare, m.SetActiveChunk(nr))
	assert.Nil(t, m.spare)
	assert.False(t, spare.Released())
}

func TestOpenChecksConfigAgain(t *testing.T) {
	conf := testConfig()
	m := New(conf, loop.NewManual())
	conf.CacheChunks = 0
	conf.ProbeBatch = -1

	content, want := numberedLines(60, 10)
	require.NoError(t, m.OpenFile(writeFile(t, content)))
	defer m.CloseAndReset()
	assert.Equal(t, 1, conf.CacheChunks)
	assert.Equal(t, DefaultConfig().ProbeBatch, conf.ProbeBatch)

	got, err := m.Line(40)
	require.NoError(t, err)
	assert.Equal(t, want[40], got)
	assert.Greater(t, m.CachedMemory(), int64(0))
}
