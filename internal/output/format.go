// Package output renders CLI results and errors as text or JSON.
package output

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects how command output is rendered. FormatAuto defers the
// choice to DetectFormat.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// IsJSON reports whether the format renders machine-readable JSON.
func (f Format) IsJSON() bool {
	return f == FormatJSON
}

// DetectFormat resolves FormatAuto against the writer: text when it is a
// terminal, JSON when output is piped or redirected. Explicit formats pass
// through unchanged.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}

	if f, ok := w.(*os.File); ok {
		if term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: Fd fits in int on supported platforms
			return FormatText
		}
	}

	return FormatJSON
}

// ParseFormat interprets a --format flag value. Unknown values fall back
// to FormatAuto rather than failing, matching flag defaults.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatAuto
	}
}
