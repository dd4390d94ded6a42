// pkg/mapper/errors.go

package mapper

import "github.com/pkg/errors"

var (
	// ErrFileTooLarge is returned by LineCount when the number of lines
	// exceeds Config.MaxLines.
	ErrFileTooLarge = errors.New("file too large")
	// ErrSelectionTooLarge is returned instead of copying a selection at
	// or above Config.ClipboardLimit.
	ErrSelectionTooLarge = errors.New("selection too large to copy")
	ErrNotOpen           = errors.New("no file open")
	ErrOutOfRange        = errors.New("line out of range")
)
