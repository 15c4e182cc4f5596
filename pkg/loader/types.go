package loader

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/panbanda/commitscope/pkg/models"
)

// TypeMode selects how a file path is turned into a change type label.
type TypeMode string

const (
	// TypeByExtension labels files by extension without the dot ("js", "css"),
	// matching loc.csv exports.
	TypeByExtension TypeMode = "extension"
	// TypeByLanguage labels files by the lowercased linguist language name.
	TypeByLanguage TypeMode = "language"
)

// ParseTypeMode validates a type mode name. Empty means TypeByExtension.
func ParseTypeMode(s string) (TypeMode, bool) {
	switch TypeMode(strings.ToLower(s)) {
	case "", TypeByExtension:
		return TypeByExtension, true
	case TypeByLanguage:
		return TypeByLanguage, true
	}
	return "", false
}

// DetectType returns the type label for a path under the given mode.
// Unknown languages fall back to the extension, then to models.OtherType.
func DetectType(path string, mode TypeMode) string {
	if mode == TypeByLanguage {
		if lang := enry.GetLanguage(filepath.Base(path), nil); lang != "" {
			return strings.ToLower(lang)
		}
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return models.OtherType
}

// IsVendored reports whether a path looks like vendored or generated
// third-party code.
func IsVendored(path string) bool {
	return enry.IsVendor(path)
}
