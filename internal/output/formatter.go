package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	toon "github.com/toon-format/toon-go"
)

// Renderable is data that knows how to present itself in every format.
// JSON and TOON both serialize RenderData.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	RenderData() any
}

// Formatter writes results in one configured format.
type Formatter struct {
	format  Format
	writer  io.Writer
	path    string
	file    *os.File
	colored bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(o *Formatter) {
		o.format = f
	}
}

// WithWriter sets the destination writer.
func WithWriter(w io.Writer) Option {
	return func(o *Formatter) {
		o.writer = w
	}
}

// WithColor enables or disables ANSI colors in text output.
func WithColor(enabled bool) Option {
	return func(o *Formatter) {
		o.colored = enabled
	}
}

// WithFile writes to path instead of the writer. Colors are turned off.
func WithFile(path string) Option {
	return func(o *Formatter) {
		o.path = path
	}
}

// New creates a formatter writing text to stdout unless configured otherwise.
func New(opts ...Option) (*Formatter, error) {
	f := &Formatter{
		format:  FormatText,
		writer:  os.Stdout,
		colored: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.path != "" {
		file, err := os.Create(f.path)
		if err != nil {
			return nil, err
		}
		f.file = file
		f.writer = file
		f.colored = false
	}
	return f, nil
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes data in the configured format. Values that are not
// Renderable are serialized; text output falls back to TOON for them.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	if !ok {
		return f.outputRaw(data)
	}

	switch f.format {
	case FormatJSON:
		return writeJSON(f.writer, r.RenderData())
	case FormatTOON:
		return writeTOON(f.writer, r.RenderData())
	case FormatMarkdown:
		return r.RenderMarkdown(f.writer)
	default:
		return r.RenderText(f.writer, f.colored)
	}
}

func (f *Formatter) outputRaw(data any) error {
	switch f.format {
	case FormatJSON:
		return writeJSON(f.writer, data)
	case FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := writeJSON(f.writer, data); err != nil {
			return err
		}
		fmt.Fprintln(f.writer, "```")
		return nil
	default:
		return writeTOON(f.writer, data)
	}
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeTOON(w io.Writer, data any) error {
	out, err := MarshalTOON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// MarshalTOON encodes data as TOON with two-space indentation.
func MarshalTOON(data any) (string, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", fmt.Errorf("encode toon: %w", err)
	}
	return string(out), nil
}
