package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table is a titled grid of cells. Data, when set, is what JSON and TOON
// output serialize instead of the cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any
}

// NewTable creates a table backed by structured data.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

// RenderData returns Data, or the rows keyed by header.
func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, t.Title, colored, "=")

	left := tw.CellAlignment{Global: tw.AlignLeft}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: left, Formatting: tw.CellFormatting{AutoFormat: tw.On}},
			Row:    tw.CellConfig{Alignment: left},
			Footer: tw.CellConfig{Alignment: left},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		cells := make([]any, len(t.Footer))
		for i, c := range t.Footer {
			cells[i] = c
		}
		table.Footer(cells...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	writeMarkdownRow(w, t.Headers)
	seps := make([]string, len(t.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	writeMarkdownRow(w, seps)
	for _, row := range t.Rows {
		writeMarkdownRow(w, row)
	}
	if len(t.Footer) > 0 {
		writeMarkdownRow(w, t.Footer)
	}
	fmt.Fprintln(w)
	return nil
}

func writeMarkdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

// Pair is one labelled value in a KeyValues block.
type Pair struct {
	Key   string
	Value string
}

// KeyValues is a titled list of labelled values, like a summary box.
type KeyValues struct {
	Title string
	Pairs []Pair
	Data  any
}

// Add appends a pair and returns kv for chaining.
func (kv *KeyValues) Add(key, value string) *KeyValues {
	kv.Pairs = append(kv.Pairs, Pair{Key: key, Value: value})
	return kv
}

// RenderData returns Data, or the pairs as an object.
func (kv *KeyValues) RenderData() any {
	if kv.Data != nil {
		return kv.Data
	}
	m := make(map[string]string, len(kv.Pairs))
	for _, p := range kv.Pairs {
		m[p.Key] = p.Value
	}
	return m
}

func (kv *KeyValues) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, kv.Title, colored, "-")
	width := 0
	for _, p := range kv.Pairs {
		width = max(width, len(p.Key))
	}
	for _, p := range kv.Pairs {
		key := fmt.Sprintf("%-*s", width, p.Key)
		if colored {
			key = color.New(color.Faint).Sprint(key)
		}
		fmt.Fprintf(w, "%s  %s\n", key, p.Value)
	}
	fmt.Fprintln(w)
	return nil
}

func (kv *KeyValues) RenderMarkdown(w io.Writer) error {
	if kv.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", kv.Title)
	}
	for _, p := range kv.Pairs {
		fmt.Fprintf(w, "- **%s**: %s\n", p.Key, p.Value)
	}
	fmt.Fprintln(w)
	return nil
}

// Report stacks several renderables under one heading.
type Report struct {
	Title string
	Parts []Renderable
	Data  any
}

// RenderData returns Data, or the title plus each part's data.
func (r *Report) RenderData() any {
	if r.Data != nil {
		return r.Data
	}
	parts := make([]any, len(r.Parts))
	for i, p := range r.Parts {
		parts[i] = p.RenderData()
	}
	return map[string]any{"title": r.Title, "parts": parts}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if r.Title != "" {
		if colored {
			color.New(color.Bold, color.FgCyan).Fprintln(w, r.Title)
		} else {
			fmt.Fprintln(w, r.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(r.Title)))
		fmt.Fprintln(w)
	}
	for _, p := range r.Parts {
		if err := p.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, p := range r.Parts {
		if err := p.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func writeTitle(w io.Writer, title string, colored bool, underline string) {
	if title == "" {
		return
	}
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(underline, len(title)))
	fmt.Fprintln(w)
}
