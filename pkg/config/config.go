package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for commitscope.
type Config struct {
	// Where change records come from
	Source SourceConfig `koanf:"source" toml:"source" yaml:"source"`

	// Default time window applied to commit views
	Window WindowConfig `koanf:"window" toml:"window" yaml:"window"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" yaml:"cache"`

	// Chart export settings
	Chart ChartConfig `koanf:"chart" toml:"chart" yaml:"chart"`

	// Logging settings
	Log LogConfig `koanf:"log" toml:"log" yaml:"log"`
}

// SourceConfig selects the record source. CSV wins over Repo when set.
// Days limits git history (0 loads everything); TypeMode is extension or
// language.
type SourceConfig struct {
	CSV        string `koanf:"csv" toml:"csv" yaml:"csv"`
	Repo       string `koanf:"repo" toml:"repo" yaml:"repo"`
	Days       int    `koanf:"days" toml:"days" yaml:"days"`
	TypeMode   string `koanf:"type_mode" toml:"type_mode" yaml:"type_mode"`
	SkipVendor bool   `koanf:"skip_vendor" toml:"skip_vendor" yaml:"skip_vendor"`
	Workers    int    `koanf:"workers" toml:"workers" yaml:"workers"`
	Projects   string `koanf:"projects" toml:"projects" yaml:"projects"`
}

// WindowConfig bounds commit views. Dates are YYYY-MM-DD or RFC 3339;
// empty means unbounded.
type WindowConfig struct {
	From  string `koanf:"from" toml:"from" yaml:"from"`
	Until string `koanf:"until" toml:"until" yaml:"until"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color"`
}

// CacheConfig controls caching of git-derived records.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// ChartConfig controls HTML chart export.
type ChartConfig struct {
	Output       string  `koanf:"output" toml:"output" yaml:"output"`
	Width        string  `koanf:"width" toml:"width" yaml:"width"`
	Height       string  `koanf:"height" toml:"height" yaml:"height"`
	MinRadius    float64 `koanf:"min_radius" toml:"min_radius" yaml:"min_radius"`
	MaxRadius    float64 `koanf:"max_radius" toml:"max_radius" yaml:"max_radius"`
	StableColors bool    `koanf:"stable_colors" toml:"stable_colors" yaml:"stable_colors"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" yaml:"level"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Repo:       ".",
			Days:       0,
			TypeMode:   "extension",
			SkipVendor: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".commitscope/cache",
			TTL:     24,
		},
		Chart: ChartConfig{
			Output:    "commitscope.html",
			Width:     "900px",
			Height:    "500px",
			MinRadius: 4,
			MaxRadius: 30,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ConfigNames are searched by LoadOrDefault, in order, inside each of SearchDirs.
var ConfigNames = []string{
	"commitscope.toml",
	"commitscope.yaml",
	"commitscope.yml",
	"commitscope.json",
	".commitscope.toml",
	".commitscope.yaml",
	".commitscope.yml",
	".commitscope.json",
}

// SearchDirs are the directories searched for a config file.
var SearchDirs = []string{".", ".commitscope"}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// Find returns the first config file in the standard locations, or "".
func Find() string {
	for _, dir := range SearchDirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadResult is a validated config and the file it came from. Source is
// empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// LoadConfig loads and validates configuration. Unlike LoadOrDefault it
// reports parse and validation errors.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	path := o.path
	if path == "" {
		path = Find()
	}

	result := &LoadResult{Config: DefaultConfig(), Source: path}
	if path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		result.Config = cfg
	}

	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Formats accepted by Output.Format.
var Formats = []string{"text", "json", "markdown", "toon"}

// LogLevels accepted by Log.Level.
var LogLevels = []string{"debug", "info", "warn", "warning", "error"}

// ValidationError lists every invalid field found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// ErrInvalidWindow is wrapped when window dates cannot be parsed.
var ErrInvalidWindow = errors.New("invalid window")

// Validate checks field values and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if !contains(Formats, c.Output.Format) {
		problems = append(problems, fmt.Sprintf("output.format %q is not one of %s", c.Output.Format, strings.Join(Formats, ", ")))
	}
	if c.Source.Days < 0 {
		problems = append(problems, fmt.Sprintf("source.days must be >= 0, got %d", c.Source.Days))
	}
	if c.Source.Workers < 0 {
		problems = append(problems, fmt.Sprintf("source.workers must be >= 0, got %d", c.Source.Workers))
	}
	if m := strings.ToLower(c.Source.TypeMode); m != "" && m != "extension" && m != "language" {
		problems = append(problems, fmt.Sprintf("source.type_mode %q is not one of extension, language", c.Source.TypeMode))
	}
	if !contains(LogLevels, strings.ToLower(c.Log.Level)) {
		problems = append(problems, fmt.Sprintf("log.level %q is not a known level", c.Log.Level))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, fmt.Sprintf("cache.ttl must be >= 0, got %d", c.Cache.TTL))
	}
	if c.Chart.MinRadius < 0 || c.Chart.MaxRadius < c.Chart.MinRadius {
		problems = append(problems, fmt.Sprintf("chart radius range [%g, %g] is invalid", c.Chart.MinRadius, c.Chart.MaxRadius))
	}

	from, until, err := c.Window.Bounds()
	if err != nil {
		problems = append(problems, err.Error())
	} else if !from.IsZero() && !until.IsZero() && until.Before(from) {
		problems = append(problems, "window.until is before window.from")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Bounds parses the window dates. A zero time means unbounded.
func (w WindowConfig) Bounds() (from, until time.Time, err error) {
	if from, err = ParseDate(w.From); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window.from: %v", ErrInvalidWindow, err)
	}
	if until, err = ParseDate(w.Until); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window.until: %v", ErrInvalidWindow, err)
	}
	return from, until, nil
}

// ParseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339. Empty gives
// the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
