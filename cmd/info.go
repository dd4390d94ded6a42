// cmd/info.go

package main

import (
	"BigText/pkg/mapper"
	"encoding/json"
	"fmt"
	"github.com/urfave/cli/v2"
)

type fileInfo struct {
	ID        string
	Path      string
	Size      int64
	Chunks    int
	Delimiter string
	Lines     int64
	Exact     bool
	Known     int64
	Mapped    int64
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show chunk layout and line statistics of files",
		ArgsUsage: "FILE...",
		Action:    info,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "count all lines instead of estimating",
			},
		},
	}
}

func info(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	for i := 0; i < ctx.Args().Len(); i++ {
		path := ctx.Args().Get(i)
		s, err := openSession(ctx, path)
		if err != nil {
			logger.Errorf("open %s: %s", path, err)
			continue
		}
		if ctx.Bool("wait") {
			if _, err = s.waitForCount(nil); err != nil {
				logger.Warnf("count %s: %s", path, err)
			}
		}
		var fi fileInfo
		s.do(func(m *mapper.FileMapper) {
			fi = fileInfo{
				ID:        m.ID(),
				Path:      m.Path(),
				Size:      m.Size(),
				Chunks:    m.ChunkCount(),
				Delimiter: m.Delimiter().String(),
				Known:     m.KnownLineNrs(),
				Mapped:    m.CachedMemory(),
			}
			if c := m.ActiveChunk(); c != nil {
				fi.Mapped += int64(c.Len())
			}
			fi.Lines, fi.Exact, err = m.LineCount()
		})
		s.close()
		if err != nil {
			logger.Warnf("%s: %s", path, err)
		}
		printJson(&fi)
	}
	return nil
}
