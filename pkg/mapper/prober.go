// pkg/mapper/prober.go

package mapper

import (
	"time"

	"BigText/pkg/loop"
	"github.com/juju/ratelimit"
)

// ProbeState of the background line counter.
type ProbeState int

const (
	Idle ProbeState = iota
	Probing
)

func (s ProbeState) String() string {
	if s == Probing {
		return "probing"
	}
	return "idle"
}

// signal block count and selection every this many ticks
const probeSignalEvery = 5

type prober struct {
	state  ProbeState
	timer  loop.Timer
	ticks  int
	bucket *ratelimit.Bucket
}

func (p *prober) init(conf *Config) {
	p.bucket = nil
	if conf.ProbeRate > 0 {
		capacity := conf.ProbeRate
		if capacity < conf.ChunkSize {
			capacity = conf.ChunkSize
		}
		p.bucket = ratelimit.NewBucketWithRate(float64(conf.ProbeRate), capacity)
	}
}

// ProbeState reports whether the background line counter is running.
func (m *FileMapper) ProbeState() ProbeState {
	return m.probe.state
}

func (m *FileMapper) startProbe(delay time.Duration) {
	if m.probe.state == Probing || m.src == nil || m.allKnown() || m.sched == nil {
		return
	}
	m.probe.state = Probing
	m.probe.ticks = 0
	m.probe.timer = m.sched.AfterFunc(delay, m.probeTick)
}

func (m *FileMapper) stopProbe() {
	if m.probe.timer != nil {
		m.probe.timer.Stop()
		m.probe.timer = nil
	}
	m.probe.state = Idle
}

// probeTick indexes up to ProbeBatch chunks following the known lines.
func (m *FileMapper) probeTick() {
	m.probe.timer = nil
	if m.src == nil || m.probe.state != Probing {
		m.probe.state = Idle
		return
	}
	failed := false
	for i := 0; i < m.conf.ProbeBatch && !m.allKnown(); i++ {
		if b := m.probe.bucket; b != nil {
			if b.Available() < m.conf.ChunkSize {
				break
			}
			b.TakeAvailable(m.conf.ChunkSize)
		}
		nr := m.lastChunkWithLineNr() + 1
		c := m.loadChunk(nr)
		if c == nil {
			failed = true
			break
		}
		c.Release()
	}

	m.probe.ticks = (m.probe.ticks + 1) % probeSignalEvery
	done := m.allKnown()
	switch {
	case done:
		m.log.Debugf("all %d lines of %s known", m.KnownLineNrs(), m.src.Path())
		m.probe.state = Idle
	case failed:
		m.log.Warnf("stop counting lines of %s at chunk %d", m.src.Path(), m.lastChunkWithLineNr()+1)
		m.probe.state = Idle
	}
	// subscribers see the final state
	m.emitLoadAmount()
	if m.probe.ticks == 0 || m.probe.state == Idle {
		m.emitBlockCount()
		if m.HasSelection() {
			m.emitSelection()
		}
	}
	if m.probe.state == Probing {
		m.probe.timer = m.sched.AfterFunc(m.conf.ProbeInterval, m.probeTick)
	}
}
