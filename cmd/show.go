// cmd/show.go

package main

import (
	"BigText/pkg/mapper"
	"fmt"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
	"os"
	"strings"
)

func showFlags() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print a range of lines",
		ArgsUsage: "FILE",
		Action:    show,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    "line",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "first line to print (1-based)",
			},
			&cli.IntFlag{
				Name:  "lines",
				Usage: "number of lines to print (default: terminal height)",
			},
			&cli.BoolFlag{
				Name:  "number",
				Usage: "prefix lines with their line number",
			},
			&cli.BoolFlag{
				Name:  "wrap",
				Usage: "do not cut lines at the terminal width",
			},
		},
	}
}

// viewport returns the rows and columns available for printing, width 0
// meaning unlimited.
func viewport(rows int) (int, int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		if rows <= 0 {
			rows = 20
		}
		return rows, 0
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		logger.Debugf("terminal size: %s", err)
		width, height = 80, 25
	}
	if rows <= 0 {
		rows = height - 1
		if rows < 1 {
			rows = 1
		}
	}
	return rows, width
}

func formatRow(nr int64, text string, number bool, width int) string {
	text = strings.ReplaceAll(text, "\t", "    ")
	if number {
		text = fmt.Sprintf("%8d  %s", nr, text)
	}
	if width > 0 && runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return text
}

func show(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	first := ctx.Int64("line") - 1
	if first < 0 {
		return fmt.Errorf("line must be at least 1")
	}
	rows, width := viewport(ctx.Int("lines"))
	if ctx.Bool("wrap") {
		width = 0
	}

	s, err := openSession(ctx, ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer s.close()

	var top int64
	var text []string
	s.do(func(m *mapper.FileMapper) {
		// index up to the requested line so the viewport can scroll there
		if _, err = m.Line(first); err != nil {
			return
		}
		m.SetVisibleLineCount(rows)
		m.MoveVisibleTopLine(first - m.VisibleTopLine())
		top = m.VisibleTopLine()
		text, err = m.Lines(0, rows)
	})
	if errors.Is(err, mapper.ErrOutOfRange) {
		return fmt.Errorf("%s has fewer than %d lines", ctx.Args().Get(0), first+1)
	}
	if err != nil {
		return err
	}
	for i, t := range text {
		fmt.Println(formatRow(top+int64(i)+1, t, ctx.Bool("number"), width))
	}
	return nil
}
