package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/commitlens/internal/testutil"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

func TestGit_ChangedFiles(t *testing.T) {
	r := testutil.NewGitRepo(t)
	r.Commit("initial", map[string]string{
		"app.py":    "def f(x):\n    return x\n",
		"old.go":    "package old\n",
		"README.md": "# readme\n",
	})
	sha := r.Commit("update", map[string]string{
		"app.py":    "def f(x):\n    if x:\n        return x\n    return 0\n",
		"new.js":    "const a = 1;\n",
		"README.md": "# readme\n\nmore\n",
	}, "old.go")

	src, err := NewGit(r.Path)
	require.NoError(t, err)

	files, err := src.ChangedFiles(context.Background(), sha)
	require.NoError(t, err)

	byPath := map[string]models.ChangedFile{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	require.Len(t, byPath, 3)
	assert.NotContains(t, byPath, "README.md")

	app := byPath["app.py"]
	assert.Equal(t, models.StatusModified, app.Status)
	assert.True(t, len(app.Patch) > 2 && app.Patch[:2] == "@@", "patch starts at hunk: %q", app.Patch)
	assert.Contains(t, app.Patch, "+    if x:")
	assert.Equal(t, 3, app.Additions)
	assert.Equal(t, 1, app.Deletions)

	assert.Equal(t, models.StatusAdded, byPath["new.js"].Status)
	assert.Equal(t, 1, byPath["new.js"].Additions)

	removed := byPath["old.go"]
	assert.Equal(t, models.StatusRemoved, removed.Status)
	assert.Equal(t, 1, removed.Deletions)
}

func TestGit_ChangedFiles_RootCommit(t *testing.T) {
	r := testutil.NewGitRepo(t)
	sha := r.Commit("root", map[string]string{"main.go": "package main\n\nfunc main() {}\n"})

	src, err := NewGit(r.Path)
	require.NoError(t, err)

	files, err := src.ChangedFiles(context.Background(), sha[:7])
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, models.StatusAdded, files[0].Status)
	assert.Equal(t, 3, files[0].Additions)
}

func TestGit_ChangedFiles_CustomFilter(t *testing.T) {
	r := testutil.NewGitRepo(t)
	sha := r.Commit("root", map[string]string{"lib.rs": "fn main() {}\n", "main.go": "package main\n"})

	src, err := NewGit(r.Path, WithGitFilter(NewFilter([]string{".rs"})))
	require.NoError(t, err)

	files, err := src.ChangedFiles(context.Background(), sha)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "lib.rs", files[0].Path)
}

func TestGit_ChangedFiles_NotFound(t *testing.T) {
	r := testutil.NewGitRepo(t)
	r.Commit("root", map[string]string{"main.go": "package main\n"})

	src, err := NewGit(r.Path)
	require.NoError(t, err)

	_, err = src.ChangedFiles(context.Background(), "0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestNewGit_NotARepository(t *testing.T) {
	_, err := NewGit(t.TempDir())
	assert.Error(t, err)
}

func TestGit_RecentCommits(t *testing.T) {
	r := testutil.NewGitRepo(t)
	var shas []string
	for i, msg := range []string{"one", "two", "three"} {
		content := "package main\n"
		for range i + 1 {
			content += "// line\n"
		}
		shas = append(shas, r.Commit(msg, map[string]string{"main.go": content}))
	}

	src, err := NewGit(r.Path)
	require.NoError(t, err)

	commits, err := src.RecentCommits(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, shas[2], commits[0].SHA)
	assert.Equal(t, "three", commits[0].Message)
	assert.Equal(t, "Test", commits[0].Author)
	assert.Equal(t, 1, commits[0].Additions)
	assert.Equal(t, shas[1], commits[1].SHA)
	assert.True(t, commits[0].Date.After(commits[1].Date))

	all, err := src.RecentCommits(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGit_RecentCommits_Since(t *testing.T) {
	r := testutil.NewGitRepo(t)
	r.Commit("one", map[string]string{"a.go": "package a\n"})
	r.Commit("two", map[string]string{"a.go": "package a\n\n// two\n"})
	third := r.Commit("three", map[string]string{"a.go": "package a\n\n// three\n"})

	// testutil commits land at 10:01, 10:02 and 10:03 on 2025-01-01 UTC.
	since := time.Date(2025, 1, 1, 10, 2, 30, 0, time.UTC)
	src, err := NewGit(r.Path, WithGitSince(since))
	require.NoError(t, err)

	commits, err := src.RecentCommits(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, third, commits[0].SHA)
}

func TestGit_RecentCommits_EmptyRepository(t *testing.T) {
	r := testutil.NewGitRepo(t)

	src, err := NewGit(r.Path)
	require.NoError(t, err)

	commits, err := src.RecentCommits(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, commits)
}
