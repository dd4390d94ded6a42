// cmd/session.go

package main

import (
	"BigText/pkg/loop"
	"BigText/pkg/mapper"
	"BigText/pkg/utils"
	"context"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// defaultConfigFile is read when --config is not given.
func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "bigtext", "config.yaml")
	if !utils.Exists(p) {
		return ""
	}
	return p
}

func mapperConfig(c *cli.Context) (*mapper.Config, error) {
	conf := mapper.DefaultConfig()
	p := c.String("config")
	if p == "" {
		p = defaultConfigFile()
	}
	if p != "" {
		logger.Debugf("load config from %s", p)
		var err error
		if conf, err = mapper.LoadConfig(p); err != nil {
			return nil, err
		}
	}
	if c.IsSet("chunk-size") {
		conf.ChunkSize = c.Int64("chunk-size")
	}
	if c.IsSet("max-line-width") {
		conf.MaxLineWidth = c.Int64("max-line-width")
	}
	if c.IsSet("cache-chunks") {
		conf.CacheChunks = c.Int("cache-chunks")
	}
	if c.IsSet("probe-rate") {
		conf.ProbeRate = c.Int64("probe-rate")
	}
	conf.Check()
	return conf, nil
}

// session owns a mapper running on its own event loop. Every access to the
// mapper goes through do.
type session struct {
	loop   *loop.Loop
	m      *mapper.FileMapper
	cancel context.CancelFunc
}

func openSession(c *cli.Context, path string) (*session, error) {
	conf, err := mapperConfig(c)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(c.Context)
	l := loop.New(64)
	go l.Run(ctx)

	s := &session{loop: l, m: mapper.New(conf, l), cancel: cancel}
	if !l.Do(func() { err = s.m.OpenFile(path) }) {
		err = errors.New("event loop stopped")
	}
	if err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *session) do(f func(m *mapper.FileMapper)) bool {
	return s.loop.Do(func() { f(s.m) })
}

func (s *session) close() {
	s.loop.Do(s.m.CloseAndReset)
	s.cancel()
}

// waitForCount blocks until the line counter stopped and returns the exact
// number of lines. progress is called periodically while waiting.
func (s *session) waitForCount(progress func(known, total int64)) (int64, error) {
	var mu sync.Mutex
	cond := utils.NewCond(&mu)
	var known, total int64
	finished := false
	s.do(func(m *mapper.FileMapper) {
		update := func() {
			mu.Lock()
			known = m.KnownLineNrs()
			total, _, _ = m.LineCount()
			finished = m.ProbeState() == mapper.Idle
			mu.Unlock()
			cond.Signal()
		}
		m.OnLoadAmountChanged(func(mapper.LoadAmountChangedPayload) { update() })
		m.OnBlockCountChanged(func(mapper.BlockCountChangedPayload) { update() })
		update()
	})

	mu.Lock()
	cond.WaitFor(func() bool { return finished }, 100*time.Millisecond, func() {
		if progress != nil {
			progress(known, total)
		}
	})
	mu.Unlock()

	var lines int64
	var exact bool
	var err error
	s.do(func(m *mapper.FileMapper) {
		lines, exact, err = m.LineCount()
		known = m.KnownLineNrs()
	})
	if err != nil {
		return lines, err
	}
	if !exact {
		return lines, errors.Errorf("counting stopped after %d lines", known)
	}
	return lines, nil
}
