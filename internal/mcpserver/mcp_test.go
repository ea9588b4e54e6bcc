package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/commitlens/internal/output"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

type fakeAnalyzer struct {
	got []string
}

func (f *fakeAnalyzer) AnalyzeMany(_ context.Context, ids []string) []review.BatchResult {
	f.got = ids
	out := make([]review.BatchResult, len(ids))
	for i, id := range ids {
		if id == "missing" {
			out[i] = review.BatchResult{CommitID: id, Err: review.ErrNotFound}
			continue
		}
		out[i] = review.BatchResult{CommitID: id, Result: &models.AnalysisResult{CommitID: id, QualityScore: 7}}
	}
	return out
}

type fakeLister struct {
	limit int
	err   error
}

func (f *fakeLister) RecentCommits(_ context.Context, limit int) ([]models.Commit, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []models.Commit{{SHA: "abc1234", Message: "init", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}, nil
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", Deps{})
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.deps.Extractor == nil || server.deps.Combiner == nil {
		t.Error("NewServer() should default the extractor and combiner")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"analyze_commits": describeAnalyzeCommits,
		"recent_commits":  describeRecentCommits,
		"file_metrics":    describeFileMetrics,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"toon", output.FormatTOON},
		{"", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(tt.in); got != tt.want {
			t.Errorf("getFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToolError(t *testing.T) {
	res, out, err := toolError("boom")
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: boom", resultText(t, res))
}

func TestFormatOutput_Markdown(t *testing.T) {
	text, err := formatOutput(map[string]int{"a": 1}, output.FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "```\n"))
	assert.True(t, strings.HasSuffix(text, "\n```"))
}

func TestHandleAnalyzeCommits(t *testing.T) {
	fa := &fakeAnalyzer{}
	s := NewServer("test", Deps{Analyzer: fa})

	res, _, err := s.handleAnalyzeCommits(context.Background(), nil, AnalyzeCommitsInput{
		Commits: []string{"abc", "missing"},
		Format:  "json",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Equal(t, []string{"abc", "missing"}, fa.got)

	var items []batchItem
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &items))
	require.Len(t, items, 2)
	assert.Equal(t, 7.0, items[0].Result.QualityScore)
	assert.Empty(t, items[0].Error)
	assert.Nil(t, items[1].Result)
	assert.Contains(t, items[1].Error, "not found")
}

func TestHandleAnalyzeCommits_Errors(t *testing.T) {
	s := NewServer("test", Deps{})
	res, _, err := s.handleAnalyzeCommits(context.Background(), nil, AnalyzeCommitsInput{Commits: []string{"abc"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	s = NewServer("test", Deps{Analyzer: &fakeAnalyzer{}})
	res, _, err = s.handleAnalyzeCommits(context.Background(), nil, AnalyzeCommitsInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleRecentCommits(t *testing.T) {
	fl := &fakeLister{}
	s := NewServer("test", Deps{Lister: fl})

	res, _, err := s.handleRecentCommits(context.Background(), nil, RecentCommitsInput{Format: "json"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, 10, fl.limit)
	assert.Contains(t, resultText(t, res), "abc1234")

	fl.err = errors.New("rate limited")
	res, _, err = s.handleRecentCommits(context.Background(), nil, RecentCommitsInput{Limit: 3})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, 3, fl.limit)
	assert.Contains(t, resultText(t, res), "rate limited")
}

func TestHandleFileMetrics(t *testing.T) {
	s := NewServer("test", Deps{})

	res, _, err := s.handleFileMetrics(context.Background(), nil, FileMetricsInput{
		Path:    "app.py",
		Content: "def f(x):\n    if x:\n        return 1\n    return 0\n",
		Format:  "json",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var got fileMetricsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "app.py", got.Metrics.Path)
	assert.Equal(t, models.ComplexityStructured, got.Metrics.ComplexityMethod)
	assert.Equal(t, 2.0, got.Metrics.Complexity)
	assert.Equal(t, 4, got.Metrics.LinesOfCode)
	assert.Nil(t, got.Score)
}

func TestHandleFileMetrics_WithScore(t *testing.T) {
	s := NewServer("test", Deps{})
	ai := 8.0

	res, _, err := s.handleFileMetrics(context.Background(), nil, FileMetricsInput{
		Path: "app.py", Content: "x = 1\n", AIScore: &ai, Format: "json",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var got fileMetricsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.NotNil(t, got.Score)
	require.NotNil(t, got.MetricsScore)
}

func TestHandleFileMetrics_Invalid(t *testing.T) {
	s := NewServer("test", Deps{})

	res, _, err := s.handleFileMetrics(context.Background(), nil, FileMetricsInput{Content: "x"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	bad := 11.0
	res, _, err = s.handleFileMetrics(context.Background(), nil, FileMetricsInput{Path: "a.py", AIScore: &bad})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_InMemorySession(t *testing.T) {
	ctx := context.Background()
	s := NewServer("test", Deps{Analyzer: &fakeAnalyzer{}, Lister: &fakeLister{}})

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_commits", "recent_commits", "file_metrics"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "analyze_commits",
		Arguments: map[string]any{"commits": []string{"abc"}, "format": "json"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"commit_id": "abc"`)
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: Explain\narguments:\n  - name: commit\n    required: true\n---\nBody {{commit}}\n"))
	assert.Equal(t, "Explain", fm.Description)
	require.Len(t, fm.Arguments, 1)
	assert.Equal(t, "commit", fm.Arguments[0].Name)
	assert.True(t, fm.Arguments[0].Required)
	assert.Equal(t, "Body {{commit}}\n", body)

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	assert.Empty(t, fm.Description)
	assert.Equal(t, "no frontmatter", body)
}

func TestPromptFiles(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		t.Run(e.Name(), func(t *testing.T) {
			content, err := promptFiles.ReadFile("prompts/" + e.Name())
			require.NoError(t, err)
			fm, body := parseFrontmatter(content)
			assert.NotEmpty(t, fm.Description)
			assert.NotEmpty(t, fm.Arguments)
			assert.NotEmpty(t, body)
		})
	}
}

func TestPromptHandler(t *testing.T) {
	handler := makePromptHandler("Explain", "Explain commit {{commit}}.")
	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "explain-score", Arguments: map[string]string{"commit": "abc1234"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Explain", result.Description)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.Role("user"), result.Messages[0].Role)
	assert.Equal(t, "Explain commit abc1234.", result.Messages[0].Content.(*mcp.TextContent).Text)
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "io.github.panbanda/commitlens", m.Name)
	assert.Equal(t, "0.0.0", m.Version)
	require.Len(t, m.Packages, 1)
	assert.Equal(t, "ghcr.io/panbanda/commitlens:0.0.0", m.Packages[0].Identifier)
	assert.Equal(t, "stdio", m.Packages[0].Transport.Type)
	assert.Len(t, m.Packages[0].EnvironmentVariables, 2)
}
