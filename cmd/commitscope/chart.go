package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitscope/internal/service/analysis"
	"github.com/panbanda/commitscope/pkg/chart"
	"github.com/panbanda/commitscope/pkg/config"
	"github.com/panbanda/commitscope/pkg/watch"
)

func chartCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "HTML file to write (default from config)",
		},
		&cli.Float64Flag{
			Name:  "progress",
			Usage: "Slider position 0-100 across the commit time span",
		},
		&cli.Float64Flag{
			Name:  "min-hour",
			Usage: "Highlight commits from this time of day",
		},
		&cli.Float64Flag{
			Name:  "max-hour",
			Value: 24,
			Usage: "Highlight commits up to this time of day",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Re-render whenever the CSV or project list changes",
		},
		&cli.BoolFlag{
			Name:  "stable-colors",
			Usage: "Color types by hash so they keep their color across runs",
		},
	}
	flags = append(flags, windowFlags...)
	flags = append(flags, projectFlags...)

	return &cli.Command{
		Name:  "chart",
		Usage: "Render the commit scatterplot (and project pie) as an HTML page",
		Description: `Writes a standalone HTML page with a scatterplot of commits by date and
time of day. Mark size grows with lines changed; color is the type with
the most lines. With --min-hour/--max-hour the commits outside the band
are greyed out. With --projects a per-year pie of the filtered project
list is added below. With --watch the page is rewritten each time the
CSV or project list changes.`,
		Flags:  flags,
		Action: runChartCmd,
	}
}

func chartOptions(cfg *config.Config, stable bool) chart.Options {
	o := chart.DefaultOptions()
	o.Width = cfg.Chart.Width
	o.Height = cfg.Chart.Height
	o.MinRadius = cfg.Chart.MinRadius
	o.MaxRadius = cfg.Chart.MaxRadius
	if stable || cfg.Chart.StableColors {
		o.Palette = chart.NewStablePalette()
	}
	return o
}

func runChartCmd(c *cli.Context) error {
	svc := newService(c)
	if err := renderChart(c, svc); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}

	var inputs []string
	if csv := source(c, svc).CSV; csv != "" {
		inputs = append(inputs, csv)
	}
	if p := projectsPath(c); p != "" {
		inputs = append(inputs, p)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("--watch needs a CSV source or a project list")
	}

	w, err := watch.NewWatcher(inputs, 0)
	if err != nil {
		return err
	}
	defer w.Stop()
	w.SetLogger(appLogger(c))
	w.SetCallback(func(path string) {
		color.Yellow("Changed: %s", path)
		if err := renderChart(c, svc); err != nil {
			color.Red("Error: %v", err)
		}
	})

	if err := w.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func projectsPath(c *cli.Context) string {
	if p := c.String("projects"); p != "" {
		return p
	}
	return appConfig(c).Source.Projects
}

// renderChart recomputes every view from the inputs and rewrites the page.
func renderChart(c *cli.Context, svc *analysis.Service) error {
	w, err := window(c, svc)
	if err != nil {
		return err
	}
	records, err := loadRecords(c, svc)
	if err != nil {
		return err
	}

	opts := analysis.CommitsOptions{Window: w}
	if c.IsSet("progress") {
		pct := c.Float64("progress")
		opts.Progress = &pct
	}
	result := svc.Commits(records, opts)

	cfg := appConfig(c)
	scatterOpts := chartOptions(cfg, c.Bool("stable-colors"))
	if c.IsSet("min-hour") || c.IsSet("max-hour") {
		brush, err := brushFromFlags(c)
		if err != nil {
			return err
		}
		sel := svc.Select(records, result.Window, brush).Selection
		scatterOpts.Selection = &sel
	}
	charters := []components.Charter{chart.Scatter(result.Summaries, scatterOpts)}

	if path := projectsPath(c); path != "" {
		list, err := svc.LoadProjects(path)
		if err != nil {
			return err
		}
		view := svc.Projects(list, projectFilter(c))
		pieOpts := chartOptions(cfg, false)
		pieOpts.Title = "Projects per year"
		charters = append(charters, chart.Pie(view.Slices, pieOpts))
	}

	path := c.String("out")
	if path == "" {
		path = cfg.Chart.Output
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.WritePage(f, "commitscope", charters...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	color.Green("Wrote %s (%d commits)", path, len(result.Summaries))
	return nil
}
