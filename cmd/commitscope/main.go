package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitscope/internal/logging"
	"github.com/panbanda/commitscope/internal/mcpserver"
	"github.com/panbanda/commitscope/internal/output"
	"github.com/panbanda/commitscope/internal/service/analysis"
	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/config"
	"github.com/panbanda/commitscope/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "commitscope",
		Usage:    "Commit history aggregation and project list views",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `commitscope turns per-file change records into per-commit summaries,
time windows, rollups and brush selections. Records come from a loc.csv
export (--csv) or straight from a git repository (--repo).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{mcpserver.ConfigEnvVar},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Read change records from a loc.csv export",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Read change records from a git repository (default from config)",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Only read the last N days of git history (0 reads everything)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			commitsCmd(),
			rollupCmd(),
			selectCmd(),
			overviewCmd(),
			projectsCmd(),
			chartCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}

// setup loads configuration and builds the logger once for all commands.
// The config command validates on its own so a broken file can be reported.
func setup(c *cli.Context) error {
	if c.Bool("no-color") {
		color.NoColor = true
	}

	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	cfg := config.DefaultConfig()
	if result, err := config.LoadConfig(opts...); err == nil {
		cfg = result.Config
	} else if !isConfigCommand(c) {
		return err
	}

	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	}
	logger, err := logging.New(level, c.App.ErrWriter)
	if err != nil {
		return err
	}

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = logger
	return nil
}

func isConfigCommand(c *cli.Context) bool {
	args := c.Args().Slice()
	return len(args) > 0 && args[0] == "config"
}

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func appLogger(c *cli.Context) *logrus.Logger {
	if logger, ok := c.App.Metadata[metaLogger].(*logrus.Logger); ok {
		return logger
	}
	return logging.Discard()
}

// newService builds the analysis service from global flags and config.
func newService(c *cli.Context) *analysis.Service {
	cfg := appConfig(c)
	opts := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithLogger(appLogger(c)),
		analysis.WithProgress(isTerminal()),
	}
	if c.Bool("no-cache") {
		opts = append(opts, analysis.WithNoCache())
	}
	return analysis.New(opts...)
}

func isTerminal() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// source returns the record source from --csv/--repo, falling back to config.
func source(c *cli.Context, svc *analysis.Service) analysis.Source {
	src := svc.DefaultSource()
	if csv := c.String("csv"); csv != "" {
		src = analysis.Source{CSV: csv}
	} else if repo := c.String("repo"); repo != "" {
		src = analysis.Source{Repo: repo}
	}
	if src.CSV == "" && src.Repo == "" {
		src.Repo = "."
	}
	if days := c.Int("days"); days > 0 {
		src.Since = time.Now().AddDate(0, 0, -days)
	}
	return src
}

func loadRecords(c *cli.Context, svc *analysis.Service) ([]models.ChangeRecord, error) {
	records, err := svc.LoadRecords(c.Context, source(c, svc))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		color.Yellow("No change records found")
	}
	return records, nil
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	cfg := appConfig(c)
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.New(
		output.WithFormat(format),
		output.WithWriter(c.App.Writer),
		output.WithFile(c.String("output")),
		output.WithColor(cfg.Output.Color && !c.Bool("no-color")),
	)
}

func writeResult(c *cli.Context, data any) error {
	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(data); err != nil {
		return err
	}
	if path := c.String("output"); path != "" {
		color.Green("Wrote %s", path)
	}
	return nil
}

var windowFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "from",
		Usage: "Keep commits at or after this date (YYYY-MM-DD or RFC 3339)",
	},
	&cli.StringFlag{
		Name:  "until",
		Usage: "Keep commits at or before this date (YYYY-MM-DD or RFC 3339)",
	},
}

// window reads --from/--until, each falling back to the configured window.
func window(c *cli.Context, svc *analysis.Service) (commits.Window, error) {
	w, err := svc.ConfiguredWindow()
	if err != nil {
		return commits.Window{}, err
	}
	if c.IsSet("from") {
		if w.From, err = config.ParseDate(c.String("from")); err != nil {
			return commits.Window{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if c.IsSet("until") {
		if w.Until, err = config.ParseDate(c.String("until")); err != nil {
			return commits.Window{}, fmt.Errorf("invalid --until: %w", err)
		}
	}
	if !w.From.IsZero() && !w.Until.IsZero() && w.Until.Before(w.From) {
		return commits.Window{}, fmt.Errorf("%w: until is before from", config.ErrInvalidWindow)
	}
	return w, nil
}
