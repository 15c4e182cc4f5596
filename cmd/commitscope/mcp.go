package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitscope/internal/mcpserver"
	"github.com/panbanda/commitscope/internal/service/analysis"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the commit
analyses as tools.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "commitscope": {
        "command": "commitscope",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - aggregate_commits   Per-commit summaries with time window and slider
  - rollup_records      Count or sum records by type, file, commit, date, year or hour
  - select_commits      Brush selection over date and time of day
  - commit_overview     Files, types, commits and lines-per-commit distribution
  - filter_projects     Project list filter with per-year counts`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry server.json",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	opts := []analysis.Option{
		analysis.WithConfig(appConfig(c)),
		analysis.WithLogger(appLogger(c)),
	}
	if c.Bool("no-cache") {
		opts = append(opts, analysis.WithNoCache())
	}
	server := mcpserver.NewServer(version, opts...)
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
