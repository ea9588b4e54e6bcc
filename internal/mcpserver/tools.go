package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/panbanda/commitlens/internal/output"
	"github.com/panbanda/commitlens/pkg/analyzer/metrics"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/source"
)

// AnalyzeCommitsInput selects the commits to analyze.
type AnalyzeCommitsInput struct {
	Commits []string `json:"commits" jsonschema:"Commit SHAs (full or abbreviated) to analyze."`
	Format  string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// RecentCommitsInput bounds the commit listing.
type RecentCommitsInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"Number of commits to list. Default 10."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// FileMetricsInput is the code to measure.
type FileMetricsInput struct {
	Path    string   `json:"path" jsonschema:"File path; its extension selects the language parser."`
	Content string   `json:"content" jsonschema:"Source code or patch text to measure."`
	AIScore *float64 `json:"ai_score,omitempty" jsonschema:"Optional 0-10 qualitative score to combine with the metrics."`
	Format  string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

type fileMetricsResult struct {
	Metrics         models.FileMetrics `json:"metrics" toon:"metrics"`
	Score           *float64           `json:"score,omitempty" toon:"score,omitempty"`
	MetricsScore    *float64           `json:"metrics_score,omitempty" toon:"metrics_score,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty" toon:"recommendations,omitempty"`
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

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
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

// Tool handlers

func (s *Server) handleAnalyzeCommits(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeCommitsInput) (*mcp.CallToolResult, any, error) {
	if s.deps.Analyzer == nil {
		return toolError("no commit source configured")
	}
	if len(input.Commits) == 0 {
		return toolError("at least one commit is required")
	}

	results := s.deps.Analyzer.AnalyzeMany(ctx, input.Commits)
	items := make([]batchItem, len(results))
	for i, r := range results {
		items[i] = batchItem{CommitID: r.CommitID, Result: r.Result}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	return toolResult(items, getFormat(input.Format))
}

func (s *Server) handleRecentCommits(ctx context.Context, _ *mcp.CallToolRequest, input RecentCommitsInput) (*mcp.CallToolResult, any, error) {
	if s.deps.Lister == nil {
		return toolError("no commit source configured")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = source.DefaultRecentLimit
	}

	commits, err := s.deps.Lister.RecentCommits(ctx, limit)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(commits, getFormat(input.Format))
}

func (s *Server) handleFileMetrics(_ context.Context, _ *mcp.CallToolRequest, input FileMetricsInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError("path is required")
	}

	fm := s.deps.Extractor.ExtractText(input.Path, input.Content)
	result := fileMetricsResult{Metrics: fm}

	if input.AIScore != nil {
		if *input.AIScore < 0 || *input.AIScore > 10 {
			return toolError("ai_score must be between 0 and 10")
		}
		outcome := s.deps.Combiner.Combine(*input.AIScore, metrics.Aggregate([]models.FileMetrics{fm}))
		result.Score = &outcome.Score
		result.MetricsScore = &outcome.MetricsScore
		result.Recommendations = outcome.Recommendations
	}
	return toolResult(result, getFormat(input.Format))
}
