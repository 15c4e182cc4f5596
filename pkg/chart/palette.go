package chart

import (
	"github.com/cespare/xxhash/v2"
)

// Tableau10 is the ten-color categorical scheme used for types and years.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Palette assigns colors to category keys. An ordinal palette hands out
// colors in first-seen order and cycles; a stable palette hashes the key
// so the same type keeps its color across runs. Not safe for concurrent use.
type Palette struct {
	colors   []string
	stable   bool
	assigned map[string]string
}

// NewPalette creates an ordinal palette over colors, or Tableau10 if none given.
func NewPalette(colors ...string) *Palette {
	if len(colors) == 0 {
		colors = Tableau10
	}
	return &Palette{colors: colors, assigned: make(map[string]string)}
}

// NewStablePalette creates a hash-assigned palette.
func NewStablePalette(colors ...string) *Palette {
	p := NewPalette(colors...)
	p.stable = true
	return p
}

// Color returns the color for key.
func (p *Palette) Color(key string) string {
	if p.stable {
		return p.colors[xxhash.Sum64String(key)%uint64(len(p.colors))]
	}
	if c, ok := p.assigned[key]; ok {
		return c
	}
	c := p.colors[len(p.assigned)%len(p.colors)]
	p.assigned[key] = c
	return c
}

// At returns the i-th color, cycling.
func (p *Palette) At(i int) string {
	if i < 0 {
		i = -i
	}
	return p.colors[i%len(p.colors)]
}
