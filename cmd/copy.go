// cmd/copy.go

package main

import (
	"BigText/pkg/mapper"
	"BigText/pkg/utils"
	"fmt"
	"github.com/urfave/cli/v2"
	"strconv"
	"strings"
)

func copyFlags() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "copy a range of text to the clipboard",
		ArgsUsage: "FILE",
		Action:    copyRange,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "start position as LINE[:COLUMN], 1-based",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "end position (exclusive column) as LINE[:COLUMN], 1-based",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "print the text instead of copying it",
			},
		},
	}
}

// parsePos converts a 1-based LINE[:COLUMN] into a cursor position.
func parsePos(s string) (mapper.CursorPos, error) {
	var pos mapper.CursorPos
	line, col, hasCol := strings.Cut(strings.TrimSpace(s), ":")
	l, err := strconv.ParseInt(line, 10, 64)
	if err != nil || l < 1 {
		return pos, fmt.Errorf("invalid line in %q", s)
	}
	pos.Line = l - 1
	if hasCol {
		c, err := strconv.Atoi(col)
		if err != nil || c < 1 {
			return pos, fmt.Errorf("invalid column in %q", s)
		}
		pos.Col = c - 1
	}
	return pos, nil
}

func copyRange(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	from, err := parsePos(ctx.String("from"))
	if err != nil {
		return err
	}
	to, err := parsePos(ctx.String("to"))
	if err != nil {
		return err
	}

	s, err := openSession(ctx, ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer s.close()

	var size int64
	var text string
	s.do(func(m *mapper.FileMapper) {
		last := from.Line
		if to.Line > last {
			last = to.Line
		}
		if _, err = m.Line(last); err != nil {
			return
		}
		m.SetPosAbsolute(from.Line, from.Col, mapper.MoveAnchor)
		m.SetPosAbsolute(to.Line, to.Col, mapper.KeepAnchor)
		if size = m.SelectionSize(); size == mapper.SelectionTooLarge {
			err = mapper.ErrSelectionTooLarge
			return
		}
		if ctx.Bool("stdout") {
			text, err = m.SelectedText()
		} else {
			err = m.CopyToClipboard()
		}
	})
	if err != nil {
		return err
	}
	if ctx.Bool("stdout") {
		fmt.Println(text)
		return nil
	}
	logger.Infof("copied %s to the clipboard", utils.FormatBytes(size))
	return nil
}
