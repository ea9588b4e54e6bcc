package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panbanda/commitlens/internal/vcs"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// errStopIteration ends a commit walk early.
var errStopIteration = errors.New("stop iteration")

// Git reads commits from a local repository. Changes are diffed against the
// first parent; a root commit is diffed against the empty tree.
type Git struct {
	repo   vcs.Repository
	filter Filter
	since  time.Time
	logger *slog.Logger
}

// GitOption configures a Git source.
type GitOption func(*Git)

// WithGitFilter sets the file filter.
func WithGitFilter(f Filter) GitOption {
	return func(g *Git) {
		g.filter = f
	}
}

// WithGitSince restricts RecentCommits to commits made at or after t.
func WithGitSince(t time.Time) GitOption {
	return func(g *Git) {
		g.since = t
	}
}

// WithGitLogger sets the diagnostics logger.
func WithGitLogger(l *slog.Logger) GitOption {
	return func(g *Git) {
		g.logger = l
	}
}

// NewGit opens the repository containing path.
func NewGit(path string, opts ...GitOption) (*Git, error) {
	repo, err := vcs.DefaultOpener().PlainOpenWithDetect(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return NewGitFromRepository(repo, opts...), nil
}

// NewGitFromRepository wraps an already opened repository.
func NewGitFromRepository(repo vcs.Repository, opts ...GitOption) *Git {
	g := &Git{
		repo:   repo,
		filter: NewFilter(nil),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "git", "path", repo.RepoPath())
	if head, err := repo.Head(); err == nil {
		g.logger.Debug("opened repository", "head", head.Hash().String())
	}
	return g
}

// ChangedFiles returns the filtered files changed by commitID. Binary files
// and changes without hunks are skipped.
func (g *Git) ChangedFiles(ctx context.Context, commitID string) ([]models.ChangedFile, error) {
	commit, err := g.repo.ResolveCommit(commitID)
	if err != nil {
		if errors.Is(err, vcs.ErrRevisionNotFound) {
			return nil, fmt.Errorf("%w: %v", review.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: resolve %s: %v", review.ErrTransport, commitID, err)
	}

	to, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: tree of %s: %v", review.ErrTransport, commitID, err)
	}
	from := vcs.EmptyTree()
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("%w: parent of %s: %v", review.ErrTransport, commitID, err)
		}
		if from, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("%w: parent tree of %s: %v", review.ErrTransport, commitID, err)
		}
	}

	changes, err := from.Diff(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("%w: diff %s: %v", review.ErrTransport, commitID, err)
	}

	var files []models.ChangedFile
	for _, ch := range changes {
		f, ok, err := g.changedFile(ctx, ch)
		if err != nil {
			return nil, fmt.Errorf("%w: patch %s: %v", review.ErrTransport, commitID, err)
		}
		if ok {
			files = append(files, f)
		}
	}

	g.logger.Debug("diffed commit", "commit", commitID, "changes", len(changes), "files", len(files))
	return files, nil
}

func (g *Git) changedFile(ctx context.Context, ch vcs.Change) (models.ChangedFile, bool, error) {
	path := ch.ToName()
	if path == "" {
		path = ch.FromName()
	}
	if !g.filter.Match(path) {
		return models.ChangedFile{}, false, nil
	}

	action, err := ch.Action()
	if err != nil {
		return models.ChangedFile{}, false, err
	}
	patch, err := ch.Patch(ctx)
	if err != nil {
		return models.ChangedFile{}, false, err
	}

	fps := patch.FilePatches()
	if len(fps) == 0 || fps[0].IsBinary() {
		return models.ChangedFile{}, false, nil
	}
	text := hunks(patch.String())
	if text == "" {
		return models.ChangedFile{}, false, nil
	}

	adds, dels := countChunkLines(fps[0].Chunks())
	return models.ChangedFile{
		Path:      path,
		Patch:     text,
		Additions: adds,
		Deletions: dels,
		Status:    gitStatus(action, ch.FromName(), ch.ToName()),
	}, true, nil
}

// RecentCommits lists the latest commits reachable from HEAD.
func (g *Git) RecentCommits(ctx context.Context, limit int) ([]models.Commit, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if _, err := g.repo.Head(); errors.Is(err, vcs.ErrEmptyRepository) {
		return []models.Commit{}, nil
	}

	var opts *vcs.LogOptions
	if !g.since.IsZero() {
		opts = &vcs.LogOptions{Since: &g.since}
	}
	iter, err := g.repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: log: %v", review.ErrTransport, err)
	}
	defer iter.Close()

	commits := make([]models.Commit, 0, limit)
	err = iter.ForEach(func(c vcs.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(commits) >= limit {
			return errStopIteration
		}
		author := c.Author()
		mc := models.Commit{
			SHA:     c.Hash().String(),
			Message: strings.TrimRight(c.Message(), "\n"),
			Author:  author.Name,
			Date:    author.When,
		}
		if stats, err := c.Stats(); err == nil {
			for _, s := range stats {
				mc.Additions += s.Addition
				mc.Deletions += s.Deletion
			}
		}
		commits = append(commits, mc)
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("log: %w", err)
	}
	return commits, nil
}

// hunks strips the git headers of a single-file unified diff, keeping the
// text from the first hunk header on, the way GitHub reports patches.
func hunks(unified string) string {
	if strings.HasPrefix(unified, "@@") {
		return strings.TrimRight(unified, "\n")
	}
	i := strings.Index(unified, "\n@@")
	if i < 0 {
		return ""
	}
	return strings.TrimRight(unified[i+1:], "\n")
}

func countChunkLines(chunks []vcs.Chunk) (adds, dels int) {
	for _, c := range chunks {
		n := lineCount(c.Content())
		switch c.Type() {
		case vcs.ChunkAdd:
			adds += n
		case vcs.ChunkDelete:
			dels += n
		}
	}
	return adds, dels
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func gitStatus(action vcs.Action, from, to string) models.FileStatus {
	switch action {
	case vcs.ActionInsert:
		return models.StatusAdded
	case vcs.ActionDelete:
		return models.StatusRemoved
	}
	if from != "" && to != "" && from != to {
		return models.StatusRenamed
	}
	return models.StatusModified
}
