package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/commitscope/internal/output"
	"github.com/panbanda/commitscope/internal/service/analysis"
	"github.com/panbanda/commitscope/pkg/analyzer/commits"
	"github.com/panbanda/commitscope/pkg/analyzer/projects"
	"github.com/panbanda/commitscope/pkg/config"
	"github.com/panbanda/commitscope/pkg/models"
)

// SourceInput is the base input for all record based tools.
type SourceInput struct {
	CSV    string `json:"csv,omitempty" jsonschema:"Path to a loc.csv export. Takes precedence over repo."`
	Repo   string `json:"repo,omitempty" jsonschema:"Path to a git repository. Defaults to the current directory."`
	Days   int    `json:"days,omitempty" jsonschema:"Only read git history from the last N days. 0 reads everything."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// WindowInput bounds the commits by time. Dates are YYYY-MM-DD or RFC 3339.
type WindowInput struct {
	From  string `json:"from,omitempty" jsonschema:"Earliest commit time to keep."`
	Until string `json:"until,omitempty" jsonschema:"Latest commit time to keep (the time slider cutoff)."`
}

// AggregateInput adds window options to the commit aggregation.
type AggregateInput struct {
	SourceInput
	WindowInput
	Progress *float64 `json:"progress,omitempty" jsonschema:"Slider position 0-100 across the commit time extent. Overrides until."`
	Top      int      `json:"top,omitempty" jsonschema:"Return at most N commits, largest first. 0 returns all in history order."`
}

// RollupInput selects the rollup grouping.
type RollupInput struct {
	SourceInput
	By  string `json:"by,omitempty" jsonschema:"Group key: type (default), file, commit, year, date or hour."`
	Sum bool   `json:"sum,omitempty" jsonschema:"Sum lines changed instead of counting records."`
}

// SelectInput describes a brush over time and time of day.
type SelectInput struct {
	SourceInput
	WindowInput
	BrushFrom  string  `json:"brush_from,omitempty" jsonschema:"Left edge of the brush (date)."`
	BrushUntil string  `json:"brush_until,omitempty" jsonschema:"Right edge of the brush (date)."`
	MinHour    float64 `json:"min_hour,omitempty" jsonschema:"Lowest time of day in fractional hours (0-24)."`
	MaxHour    float64 `json:"max_hour,omitempty" jsonschema:"Highest time of day in fractional hours. 0 means 24."`
}

// OverviewInput summarises a record set.
type OverviewInput struct {
	SourceInput
	WindowInput
}

// ProjectsInput filters a project list.
type ProjectsInput struct {
	File   string `json:"file,omitempty" jsonschema:"Path to projects.json or projects.yaml. Defaults to the configured list."`
	Query  string `json:"query,omitempty" jsonschema:"Case-insensitive text matched against every project field."`
	Year   string `json:"year,omitempty" jsonschema:"Only keep projects from this year."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func (s *Server) getSource(input SourceInput) analysis.Source {
	src := s.svc.DefaultSource()
	if input.CSV != "" || input.Repo != "" {
		src = analysis.Source{CSV: input.CSV, Repo: input.Repo}
	}
	if src.CSV == "" && src.Repo == "" {
		src.Repo = "."
	}
	if input.Days > 0 {
		src.Since = time.Now().AddDate(0, 0, -input.Days)
	}
	return src
}

func getWindow(input WindowInput) (commits.Window, error) {
	from, err := config.ParseDate(input.From)
	if err != nil {
		return commits.Window{}, fmt.Errorf("invalid from: %w", err)
	}
	until, err := config.ParseDate(input.Until)
	if err != nil {
		return commits.Window{}, fmt.Errorf("invalid until: %w", err)
	}
	if !from.IsZero() && !until.IsZero() && until.Before(from) {
		return commits.Window{}, fmt.Errorf("until %s is before from %s", input.Until, input.From)
	}
	return commits.Window{From: from, Until: until}, nil
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) loadRecords(ctx context.Context, input SourceInput) ([]models.ChangeRecord, error) {
	records, err := s.svc.LoadRecords(ctx, s.getSource(input))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no change records found")
	}
	return records, nil
}

// Tool handlers

func (s *Server) handleAggregateCommits(ctx context.Context, req *mcp.CallToolRequest, input AggregateInput) (*mcp.CallToolResult, any, error) {
	window, err := getWindow(input.WindowInput)
	if err != nil {
		return toolError(err.Error())
	}
	records, err := s.loadRecords(ctx, input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}

	result := s.svc.Commits(records, analysis.CommitsOptions{Window: window, Progress: input.Progress})
	result.Summaries = commits.Largest(result.Summaries, input.Top)
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleRollupRecords(ctx context.Context, req *mcp.CallToolRequest, input RollupInput) (*mcp.CallToolResult, any, error) {
	records, err := s.loadRecords(ctx, input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}

	rollup, err := s.svc.Rollup(records, analysis.RollupOptions{By: input.By, Sum: input.Sum})
	if err != nil {
		return toolError(err.Error())
	}

	by := input.By
	if by == "" {
		by = "type"
	}
	measure := "records"
	if input.Sum {
		measure = "lines"
	}
	result := struct {
		By      string                       `json:"by"`
		Measure string                       `json:"measure"`
		Groups  []commits.Entry[string, int] `json:"groups"`
	}{
		By:      by,
		Measure: measure,
		Groups:  rollup.Entries(),
	}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleSelectCommits(ctx context.Context, req *mcp.CallToolRequest, input SelectInput) (*mcp.CallToolResult, any, error) {
	window, err := getWindow(input.WindowInput)
	if err != nil {
		return toolError(err.Error())
	}
	edges, err := getWindow(WindowInput{From: input.BrushFrom, Until: input.BrushUntil})
	if err != nil {
		return toolError("brush: " + err.Error())
	}
	if input.MinHour < 0 || input.MaxHour > 24 || (input.MaxHour != 0 && input.MaxHour < input.MinHour) {
		return toolError("hours must satisfy 0 <= min_hour <= max_hour <= 24")
	}
	records, err := s.loadRecords(ctx, input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}

	brush := commits.Brush{From: edges.From, Until: edges.Until, MinHour: input.MinHour, MaxHour: input.MaxHour}
	if brush.IsEmpty() {
		// An all-zero input means the whole day over all time.
		brush.MaxHour = 24
	}
	return toolResult(s.svc.Select(records, window, brush), getFormat(input.Format))
}

func (s *Server) handleCommitOverview(ctx context.Context, req *mcp.CallToolRequest, input OverviewInput) (*mcp.CallToolResult, any, error) {
	window, err := getWindow(input.WindowInput)
	if err != nil {
		return toolError(err.Error())
	}
	records, err := s.loadRecords(ctx, input.SourceInput)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(s.svc.Overview(records, window), getFormat(input.Format))
}

func (s *Server) handleFilterProjects(ctx context.Context, req *mcp.CallToolRequest, input ProjectsInput) (*mcp.CallToolResult, any, error) {
	list, err := s.svc.LoadProjects(input.File)
	if err != nil {
		return toolError(err.Error())
	}
	f := projects.Filter{}.WithQuery(input.Query)
	if input.Year != "" {
		f = f.ToggleYear(input.Year)
	}
	return toolResult(s.svc.Projects(list, f), getFormat(input.Format))
}
