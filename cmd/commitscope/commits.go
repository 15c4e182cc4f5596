package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitscope/internal/output"
	"github.com/panbanda/commitscope/internal/service/analysis"
	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/config"
)

func commitsCmd() *cli.Command {
	return &cli.Command{
		Name:  "commits",
		Usage: "Aggregate change records into per-commit summaries",
		Flags: append([]cli.Flag{
			&cli.Float64Flag{
				Name:  "progress",
				Usage: "Slider position 0-100 across the commit time span (overrides --until)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Show only the N largest commits",
			},
		}, windowFlags...),
		Action: runCommitsCmd,
	}
}

func runCommitsCmd(c *cli.Context) error {
	svc := newService(c)
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
	result.Summaries = commits.Largest(result.Summaries, c.Int("top"))

	return writeResult(c, commitsTable(result))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func commitsTable(result analysis.CommitsResult) *output.Table {
	rows := make([][]string, 0, len(result.Summaries))
	lines := 0
	for _, s := range result.Summaries {
		lines += s.TotalLines
		rows = append(rows, []string{
			shortID(s.CommitID),
			output.DateTime(s.Timestamp),
			output.Clock(s.TimeOfDayFraction),
			output.Number(s.TotalLines),
			s.ByType.Dominant(),
			fmt.Sprintf("%d", len(s.Files)),
		})
	}

	return output.NewTable(
		"Commits",
		[]string{"Commit", "Date", "Time of Day", "Lines", "Main Type", "Files"},
		rows,
		[]string{
			fmt.Sprintf("%d of %d commits", len(result.Summaries), result.Total),
			"", "",
			output.Number(lines),
			"", "",
		},
		result,
	)
}

func rollupCmd() *cli.Command {
	return &cli.Command{
		Name:  "rollup",
		Usage: "Group change records by a key, counting them or summing lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "by",
				Value: "type",
				Usage: "Group key: " + strings.Join(analysis.RollupKeys, ", "),
			},
			&cli.BoolFlag{
				Name:  "sum",
				Usage: "Sum lines changed instead of counting records",
			},
		},
		Action: runRollupCmd,
	}
}

type rollupData struct {
	By      string                       `json:"by"`
	Measure string                       `json:"measure"`
	Groups  []commits.Entry[string, int] `json:"groups"`
}

func runRollupCmd(c *cli.Context) error {
	svc := newService(c)
	records, err := loadRecords(c, svc)
	if err != nil {
		return err
	}

	by := strings.ToLower(c.String("by"))
	if by == "" {
		by = "type"
	}
	rollup, err := svc.Rollup(records, analysis.RollupOptions{By: by, Sum: c.Bool("sum")})
	if err != nil {
		return err
	}

	measure := "Records"
	if c.Bool("sum") {
		measure = "Lines"
	}

	total := 0
	for _, e := range rollup.Entries() {
		total += e.Value
	}
	rows := make([][]string, 0, rollup.Len())
	for _, e := range rollup.Entries() {
		share := 0.0
		if total > 0 {
			share = float64(e.Value) / float64(total) * 100
		}
		rows = append(rows, []string{e.Key, output.Number(e.Value), output.Percent(share)})
	}

	table := output.NewTable(
		fmt.Sprintf("%s by %s", measure, by),
		[]string{strings.ToUpper(by[:1]) + by[1:], measure, "Share"},
		rows,
		[]string{fmt.Sprintf("%d groups", rollup.Len()), output.Number(total), ""},
		rollupData{By: by, Measure: strings.ToLower(measure), Groups: rollup.Entries()},
	)
	return writeResult(c, table)
}

func selectCmd() *cli.Command {
	return &cli.Command{
		Name:  "select",
		Usage: "Select commits inside a brush over date and time of day",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "brush-from",
				Usage: "Left edge of the brush (date)",
			},
			&cli.StringFlag{
				Name:  "brush-until",
				Usage: "Right edge of the brush (date)",
			},
			&cli.Float64Flag{
				Name:  "min-hour",
				Usage: "Lowest time of day in fractional hours",
			},
			&cli.Float64Flag{
				Name:  "max-hour",
				Value: 24,
				Usage: "Highest time of day in fractional hours",
			},
		}, windowFlags...),
		Action: runSelectCmd,
	}
}

func brushFromFlags(c *cli.Context) (commits.Brush, error) {
	from, err := config.ParseDate(c.String("brush-from"))
	if err != nil {
		return commits.Brush{}, fmt.Errorf("invalid --brush-from: %w", err)
	}
	until, err := config.ParseDate(c.String("brush-until"))
	if err != nil {
		return commits.Brush{}, fmt.Errorf("invalid --brush-until: %w", err)
	}
	b := commits.Brush{From: from, Until: until, MinHour: c.Float64("min-hour"), MaxHour: c.Float64("max-hour")}
	if b.MinHour < 0 || b.MaxHour > 24 || b.MaxHour < b.MinHour {
		return commits.Brush{}, fmt.Errorf("hours must satisfy 0 <= min-hour <= max-hour <= 24")
	}
	return b, nil
}

func runSelectCmd(c *cli.Context) error {
	svc := newService(c)
	w, err := window(c, svc)
	if err != nil {
		return err
	}
	brush, err := brushFromFlags(c)
	if err != nil {
		return err
	}
	records, err := loadRecords(c, svc)
	if err != nil {
		return err
	}

	result := svc.Select(records, w, brush)
	sel := result.Selection

	summary := &output.KeyValues{Title: "Selection"}
	summary.Add("Time of day", output.Clock(brush.MinHour)+" - "+output.Clock(brush.MaxHour))
	summary.Add("Commits", fmt.Sprintf("%d of %d", sel.Commits, len(result.Summaries)))
	summary.Add("Lines", output.Lines(sel.TotalLines))

	rows := make([][]string, 0, len(sel.Shares))
	for _, share := range sel.Shares {
		rows = append(rows, []string{share.Type, output.Number(share.Lines), output.Percent(share.Percent)})
	}
	shares := output.NewTable("Lines by Type", []string{"Type", "Lines", "Share"}, rows, nil, nil)

	if sel.Commits == 0 {
		color.Yellow("No commits inside the brush")
	}
	return writeResult(c, &output.Report{
		Title: "Brush Selection",
		Parts: []output.Renderable{summary, shares},
		Data:  result,
	})
}

func overviewCmd() *cli.Command {
	return &cli.Command{
		Name:   "overview",
		Usage:  "Summarise files, types, commits and lines",
		Flags:  windowFlags,
		Action: runOverviewCmd,
	}
}

func runOverviewCmd(c *cli.Context) error {
	svc := newService(c)
	w, err := window(c, svc)
	if err != nil {
		return err
	}
	records, err := loadRecords(c, svc)
	if err != nil {
		return err
	}

	return writeResult(c, overviewBox(svc.Overview(records, w)))
}

func overviewBox(ov commits.Overview) *output.KeyValues {
	kv := &output.KeyValues{Title: "Overview", Data: ov}
	kv.Add("Files", output.Number(ov.Files))
	kv.Add("Types", output.Number(ov.Types))
	kv.Add("Records", output.Number(ov.Records))
	kv.Add("Commits", output.Number(ov.Commits))
	kv.Add("Lines", output.Lines(ov.TotalLines))
	kv.Add("First commit", output.DateTime(ov.First)+" ("+output.Relative(ov.First)+")")
	kv.Add("Last commit", output.DateTime(ov.Last)+" ("+output.Relative(ov.Last)+")")
	kv.Add("Lines per commit", fmt.Sprintf("mean %.1f, sd %.1f, p50 %.0f, p95 %.0f",
		ov.PerCommit.Mean, ov.PerCommit.StdDev, ov.PerCommit.P50, ov.PerCommit.P95))
	if ov.BusiestType != "" {
		kv.Add("Busiest type", ov.BusiestType)
	}
	return kv
}
