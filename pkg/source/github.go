package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// GitHub reads commits of one repository through the GitHub REST API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	filter Filter
	since  time.Time
	logger *slog.Logger
}

// GitHubOption configures a GitHub source.
type GitHubOption func(*GitHub) error

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(raw string) GitHubOption {
	return func(g *GitHub) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", raw, err)
		}
		g.client.BaseURL = u
		return nil
	}
}

// WithGitHubFilter sets the file filter.
func WithGitHubFilter(f Filter) GitHubOption {
	return func(g *GitHub) error {
		g.filter = f
		return nil
	}
}

// WithGitHubSince restricts RecentCommits to commits made at or after t.
func WithGitHubSince(t time.Time) GitHubOption {
	return func(g *GitHub) error {
		g.since = t
		return nil
	}
}

// WithGitHubLogger sets the diagnostics logger.
func WithGitHubLogger(l *slog.Logger) GitHubOption {
	return func(g *GitHub) error {
		g.logger = l
		return nil
	}
}

// NewGitHub creates a source for repository ("owner/name"). An empty token
// makes unauthenticated requests.
func NewGitHub(token, repository string, opts ...GitHubOption) (*GitHub, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repository)
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	g := &GitHub{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   name,
		filter: NewFilter(nil),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "github", "repository", repository)
	return g, nil
}

// ChangedFiles returns the filtered files of a commit. Files without patch
// text (binary or too large) are skipped.
func (g *GitHub) ChangedFiles(ctx context.Context, commitID string) ([]models.ChangedFile, error) {
	var files []models.ChangedFile
	opts := &github.ListOptions{PerPage: 100}
	for {
		commit, resp, err := g.client.Repositories.GetCommit(ctx, g.owner, g.repo, commitID, opts)
		if err != nil {
			return nil, classifyGitHubError(fmt.Sprintf("get commit %s", commitID), err)
		}
		for _, f := range commit.Files {
			if !g.filter.Match(f.GetFilename()) || f.GetPatch() == "" {
				continue
			}
			files = append(files, models.ChangedFile{
				Path:      f.GetFilename(),
				Patch:     f.GetPatch(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Status:    githubStatus(f.GetStatus()),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	g.logger.Debug("fetched commit files", "commit", commitID, "files", len(files))
	return files, nil
}

// RecentCommits lists the latest commits on the default branch with their
// line stats.
func (g *GitHub) RecentCommits(ctx context.Context, limit int) ([]models.Commit, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	list, _, err := g.client.Repositories.ListCommits(ctx, g.owner, g.repo, &github.CommitsListOptions{
		Since:       g.since,
		ListOptions: github.ListOptions{PerPage: min(limit, 100)},
	})
	if err != nil {
		return nil, classifyGitHubError("list commits", err)
	}
	if len(list) > limit {
		list = list[:limit]
	}

	commits := make([]models.Commit, 0, len(list))
	for _, rc := range list {
		c := models.Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
			Author:  rc.GetCommit().GetAuthor().GetName(),
			Date:    rc.GetCommit().GetAuthor().GetDate().Time,
		}
		// The list endpoint omits stats.
		full, _, err := g.client.Repositories.GetCommit(ctx, g.owner, g.repo, c.SHA, &github.ListOptions{PerPage: 1})
		if err != nil {
			return nil, classifyGitHubError(fmt.Sprintf("get commit %s", c.SHA), err)
		}
		c.Additions = full.GetStats().GetAdditions()
		c.Deletions = full.GetStats().GetDeletions()
		commits = append(commits, c)
	}
	return commits, nil
}

// RepoStats returns repository-level statistics.
func (g *GitHub) RepoStats(ctx context.Context) (*models.RepoStats, error) {
	r, _, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
	if err != nil {
		return nil, classifyGitHubError("get repository", err)
	}
	return &models.RepoStats{
		Name:       r.GetFullName(),
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
		Language:   r.GetLanguage(),
		CreatedAt:  r.GetCreatedAt().Time,
	}, nil
}

func githubStatus(s string) models.FileStatus {
	switch s {
	case "added":
		return models.StatusAdded
	case "removed":
		return models.StatusRemoved
	case "renamed":
		return models.StatusRenamed
	default:
		return models.StatusModified
	}
}

// classifyGitHubError maps go-github errors onto collaborator kinds.
func classifyGitHubError(op string, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %w: %v", op, review.ErrTransport, review.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %v", op, review.ErrNotFound, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, review.ErrTransport, err)
}
