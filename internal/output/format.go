// Package output renders command results as text tables, markdown, JSON
// or TOON.
package output

import (
	"errors"
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ErrUnknownFormat is returned by ParseFormat for unrecognised names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a name to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "toon":
		return FormatTOON, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}
