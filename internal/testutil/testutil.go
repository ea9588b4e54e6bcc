// Package testutil holds helpers shared by tests: files on disk and throwaway
// git repositories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GitRepo is a temporary repository built commit by commit.
type GitRepo struct {
	t    *testing.T
	Path string
	Repo *git.Repository
	when time.Time
}

// NewGitRepo initializes an empty repository in a temp dir.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	return &GitRepo{
		t:    t,
		Path: path,
		Repo: repo,
		when: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

// Commit writes files (path -> content), removes the paths in remove, and
// commits. It returns the new commit's SHA. Each commit is one minute after
// the previous one.
func (r *GitRepo) Commit(message string, files map[string]string, remove ...string) string {
	r.t.Helper()

	w, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree() error: %v", err)
	}
	for name, content := range files {
		WriteFile(r.t, filepath.Join(r.Path, name), content)
		if _, err := w.Add(name); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}
	for _, name := range remove {
		if _, err := w.Remove(name); err != nil {
			r.t.Fatalf("Remove(%s) error: %v", name, err)
		}
	}

	r.when = r.when.Add(time.Minute)
	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  r.when,
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.t.Fatalf("Commit(%q) error: %v", message, err)
	}
	return hash.String()
}
