package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitscope/internal/output"
	"github.com/panbanda/commitscope/pkg/analyzer/projects"
)

var projectFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "projects",
		Usage: "Project list (projects.json or projects.yaml); default from config",
	},
	&cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Case-insensitive text matched against every project field",
	},
	&cli.StringFlag{
		Name:  "year",
		Usage: "Only keep projects from this year",
	},
}

func projectsCmd() *cli.Command {
	return &cli.Command{
		Name:   "projects",
		Usage:  "Filter the project list and count projects per year",
		Flags:  projectFlags,
		Action: runProjectsCmd,
	}
}

func projectFilter(c *cli.Context) projects.Filter {
	f := projects.Filter{}.WithQuery(c.String("query"))
	if year := c.String("year"); year != "" {
		f = f.ToggleYear(year)
	}
	return f
}

func runProjectsCmd(c *cli.Context) error {
	svc := newService(c)
	list, err := svc.LoadProjects(c.String("projects"))
	if err != nil {
		return err
	}

	result := svc.Projects(list, projectFilter(c))

	rows := make([][]string, 0, len(result.Projects))
	for _, p := range result.Projects {
		rows = append(rows, []string{p.Title, p.Year, truncate(p.Description, 60)})
	}
	table := output.NewTable(
		"Projects",
		[]string{"Title", "Year", "Description"},
		rows,
		[]string{fmt.Sprintf("%d of %d projects", len(result.Projects), len(list)), "", ""},
		nil,
	)

	yearRows := make([][]string, 0, len(result.Slices))
	for _, s := range result.Slices {
		label := s.Label
		if s.Selected {
			label += " *"
		}
		yearRows = append(yearRows, []string{label, output.Number(s.Value)})
	}
	years := output.NewTable("Per Year", []string{"Year", "Projects"}, yearRows, nil, nil)

	return writeResult(c, &output.Report{
		Title: "Project List",
		Parts: []output.Renderable{table, years},
		Data:  result,
	})
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
