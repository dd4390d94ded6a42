// cmd/follow.go

package main

import (
	"BigText/pkg/mapper"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"os"
	"os/signal"
	"syscall"
)

func followFlags() *cli.Command {
	return &cli.Command{
		Name:      "follow",
		Usage:     "print lines appended to a file",
		ArgsUsage: "FILE",
		Action:    follow,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    "lines",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "number of existing lines to print first",
			},
		},
	}
}

// printFrom prints the lines from next up to the current end of the file
// and returns the next line to print.
func printFrom(m *mapper.FileMapper, next int64) int64 {
	for {
		text, err := m.Line(next)
		if errors.Is(err, mapper.ErrOutOfRange) {
			return next
		}
		if err != nil {
			logger.Warnf("line %d: %s", next+1, err)
			return next
		}
		fmt.Println(text)
		next++
	}
}

func follow(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	path := ctx.Args().Get(0)
	s, err := openSession(ctx, path)
	if err != nil {
		return err
	}
	defer s.close()

	lines, err := s.waitForCount(nil)
	if err != nil {
		return err
	}
	next := lines - ctx.Int64("lines")
	if next < 0 {
		next = 0
	}
	s.do(func(m *mapper.FileMapper) { next = printFrom(m, next) })

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()
	if err = watcher.Add(path); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	for {
		select {
		case <-sig:
			return nil
		case err := <-watcher.Errors:
			logger.Warnf("watch %s: %s", path, err)
		case ev := <-watcher.Events:
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				logger.Infof("%s was removed", path)
				return nil
			case ev.Has(fsnotify.Write):
				s.loop.Post(func() {
					size := s.m.Size()
					if err := s.m.Reload(); err != nil {
						logger.Warnf("reload %s: %s", path, err)
						return
					}
					if s.m.Size() < size {
						logger.Warnf("%s was truncated", path)
						next = 0
					}
					next = printFrom(s.m, next)
				})
			}
		}
	}
}
