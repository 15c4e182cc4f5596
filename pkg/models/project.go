package models

import (
	"sort"
	"strings"
)

// Project is one entry of the portfolio project list.
type Project struct {
	Title       string            `json:"title" yaml:"title"`
	Year        string            `json:"year" yaml:"year"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string            `json:"image,omitempty" yaml:"image,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// SearchText joins every field value with newlines, lower-cased.
func (p Project) SearchText() string {
	values := []string{p.Title, p.Year, p.Description, p.Image, p.URL}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values = append(values, p.Extra[k])
	}

	return strings.ToLower(strings.Join(values, "\n"))
}
