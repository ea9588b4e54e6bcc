// Package mcpserver exposes commit analysis as Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/commitlens/pkg/analyzer/metrics"
	"github.com/panbanda/commitlens/pkg/analyzer/score"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// CommitAnalyzer analyzes a batch of commits. *review.Analyzer satisfies it.
type CommitAnalyzer interface {
	AnalyzeMany(ctx context.Context, commitIDs []string) []review.BatchResult
}

// Deps are the collaborators behind the tools. Lister may be nil, in which
// case recent_commits reports an error.
type Deps struct {
	Analyzer  CommitAnalyzer
	Lister    review.CommitLister
	Extractor *metrics.Extractor
	Combiner  *score.Combiner
}

// Server wraps the MCP server and registers the commitlens tools.
type Server struct {
	server *mcp.Server
	deps   Deps
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(version string, deps Deps) *Server {
	if version == "" {
		version = "dev"
	}
	if deps.Extractor == nil {
		deps.Extractor = metrics.New()
	}
	if deps.Combiner == nil {
		deps.Combiner = score.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "commitlens",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, deps: deps}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_commits",
		Description: describeAnalyzeCommits(),
	}, s.handleAnalyzeCommits)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_commits",
		Description: describeRecentCommits(),
	}, s.handleRecentCommits)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "file_metrics",
		Description: describeFileMetrics(),
	}, s.handleFileMetrics)
}

// batchItem mirrors review.BatchResult with the error as text.
type batchItem struct {
	CommitID string                 `json:"commit_id" toon:"commit_id"`
	Result   *models.AnalysisResult `json:"result,omitempty" toon:"result,omitempty"`
	Error    string                 `json:"error,omitempty" toon:"error,omitempty"`
}
