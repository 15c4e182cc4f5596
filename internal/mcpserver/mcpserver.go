// Package mcpserver exposes the commit and project analyses as MCP tools
// over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/commitscope/internal/service/analysis"
)

// Server wraps the MCP server and registers all commitscope tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// NewServer creates a new MCP server with all tools registered. Options
// are passed to the analysis service the tools share.
func NewServer(version string, opts ...analysis.Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "commitscope",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: analysis.New(opts...)}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "aggregate_commits",
		Description: describeAggregate(),
	}, s.handleAggregateCommits)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rollup_records",
		Description: describeRollup(),
	}, s.handleRollupRecords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_commits",
		Description: describeSelect(),
	}, s.handleSelectCommits)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "commit_overview",
		Description: describeOverview(),
	}, s.handleCommitOverview)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter_projects",
		Description: describeProjects(),
	}, s.handleFilterProjects)
}
