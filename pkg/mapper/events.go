// pkg/mapper/events.go

package mapper

// BlockCountChangedPayload is emitted when the (estimated) number of lines changed.
type BlockCountChangedPayload struct {
	Lines int64
	Exact bool
}

// LoadAmountChangedPayload reports how much of the file is indexed.
type LoadAmountChangedPayload struct {
	Known    int64
	Fraction float64
}

// SelectionChangedPayload is emitted when the selection changed or must be
// re-evaluated.
type SelectionChangedPayload struct {
	Position CursorPos
	Anchor   CursorPos
}

// PositionChangedPayload is emitted when position or anchor moved.
type PositionChangedPayload struct {
	Position CursorPos
	Anchor   CursorPos
}

type signals struct {
	blockCount []func(BlockCountChangedPayload)
	loadAmount []func(LoadAmountChangedPayload)
	selection  []func(SelectionChangedPayload)
	position   []func(PositionChangedPayload)
}

// OnBlockCountChanged subscribes fn to line count changes.
func (m *FileMapper) OnBlockCountChanged(fn func(BlockCountChangedPayload)) {
	m.signals.blockCount = append(m.signals.blockCount, fn)
}

// OnLoadAmountChanged subscribes fn to indexing progress.
func (m *FileMapper) OnLoadAmountChanged(fn func(LoadAmountChangedPayload)) {
	m.signals.loadAmount = append(m.signals.loadAmount, fn)
}

// OnSelectionChanged subscribes fn to selection changes.
func (m *FileMapper) OnSelectionChanged(fn func(SelectionChangedPayload)) {
	m.signals.selection = append(m.signals.selection, fn)
}

// OnPositionChanged subscribes fn to cursor moves.
func (m *FileMapper) OnPositionChanged(fn func(PositionChangedPayload)) {
	m.signals.position = append(m.signals.position, fn)
}

func (m *FileMapper) emitBlockCount() {
	lines, exact, err := m.LineCount()
	if err != nil {
		m.log.Warnf("line count: %s", err)
	}
	p := BlockCountChangedPayload{Lines: lines, Exact: exact}
	for _, fn := range m.signals.blockCount {
		fn(p)
	}
}

func (m *FileMapper) emitLoadAmount() {
	p := LoadAmountChangedPayload{Known: m.KnownLineNrs(), Fraction: m.LoadAmount()}
	for _, fn := range m.signals.loadAmount {
		fn(p)
	}
}

func (m *FileMapper) emitSelection() {
	p := SelectionChangedPayload{Position: m.pos.CursorPos, Anchor: m.anchor.CursorPos}
	for _, fn := range m.signals.selection {
		fn(p)
	}
}

func (m *FileMapper) emitPosition() {
	p := PositionChangedPayload{Position: m.pos.CursorPos, Anchor: m.anchor.CursorPos}
	for _, fn := range m.signals.position {
		fn(p)
	}
}
