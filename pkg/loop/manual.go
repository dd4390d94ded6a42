// pkg/loop/manual.go

package loop

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by an explicit virtual clock. Callbacks run
// on the goroutine that advances the clock.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	m    *Manual
	at   time.Duration
	seq  int
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}

// NewManual creates a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	return t
}

// Now returns the virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// Advance moves the clock by d, running every callback due on the way,
// including callbacks scheduled by them. It returns how many ran.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for len(m.timers) > 0 && m.timers[0].at <= target {
		t := m.timers[0]
		m.timers = m.timers[1:]
		m.now = t.at
		t.done = true
		t.f()
		ran++
	}
	m.now = target
	return ran
}

// RunNext jumps to the next scheduled callback and runs it. It returns
// false if nothing is scheduled.
func (m *Manual) RunNext() bool {
	if len(m.timers) == 0 {
		return false
	}
	return m.Advance(m.timers[0].at-m.now) > 0
}

// RunAll runs callbacks until none is left or limit callbacks ran.
func (m *Manual) RunAll(limit int) int {
	ran := 0
	for ran < limit && m.RunNext() {
		ran++
	}
	return ran
}

func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
