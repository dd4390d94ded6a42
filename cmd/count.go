// cmd/count.go

package main

import (
	"BigText/pkg/mapper"
	"BigText/pkg/utils"
	"fmt"
	"github.com/urfave/cli/v2"
)

func countFlags() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "count the lines of a file",
		ArgsUsage: "FILE",
		Action:    count,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print elapsed time and resource usage",
			},
		},
	}
}

func count(ctx *cli.Context) error {
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

	progress, bar := utils.NewDynProgressBar("counting lines: ", ctx.Bool("quiet"))
	lines, err := s.waitForCount(func(known, total int64) {
		bar.SetTotal(total, false)
		bar.SetCurrent(known)
	})
	if err != nil {
		bar.Abort(false)
		progress.Wait()
		return err
	}
	bar.SetTotal(lines, true)
	progress.Wait()

	fmt.Printf("%d %s\n", lines, path)
	if ctx.Bool("stats") {
		var size int64
		s.do(func(m *mapper.FileMapper) { size = m.Size() })
		logger.Infof("counted %s in %s, %s", utils.FormatBytes(size), utils.Clock(), utils.GetRusage())
	}
	return nil
}
