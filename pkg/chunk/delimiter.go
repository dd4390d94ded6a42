// pkg/chunk/delimiter.go

package chunk

import "bytes"

// Delimiter is the line break convention of a file. Char is the byte lines
// are split at, Width the number of bytes a line break occupies (2 for CRLF).
type Delimiter struct {
	Char  byte
	Width int
}

var (
	LF   = Delimiter{'\n', 1}
	CRLF = Delimiter{'\n', 2}
	CR   = Delimiter{'\r', 1}
)

// Valid reports whether the delimiter was detected.
func (d Delimiter) Valid() bool {
	return d.Width > 0
}

func (d Delimiter) String() string {
	switch d {
	case LF:
		return "LF"
	case CRLF:
		return "CRLF"
	case CR:
		return "CR"
	}
	return "none"
}

// DetectDelimiter inspects data for the first line break. The second
// result is false when data holds no line break at all.
func DetectDelimiter(data []byte) (Delimiter, bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		if i > 0 && data[i-1] == '\r' {
			return CRLF, true
		}
		return LF, true
	}
	// a trailing \r may be the first half of a CRLF split by the chunk end
	if i := bytes.IndexByte(data, '\r'); i >= 0 && i < len(data)-1 {
		return CR, true
	}
	return Delimiter{}, false
}
