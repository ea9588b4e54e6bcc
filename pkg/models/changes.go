package models

import "time"

// FileStatus describes how a file was touched by a commit.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
	StatusRenamed  FileStatus = "renamed"
)

// ChangedFile is one file's change within a commit.
// Instances are created per analysis request and not mutated afterwards.
type ChangedFile struct {
	Path      string     `json:"path" toon:"path"`
	Patch     string     `json:"patch" toon:"patch"`
	Additions int        `json:"additions" toon:"additions"`
	Deletions int        `json:"deletions" toon:"deletions"`
	Status    FileStatus `json:"status" toon:"status"`
}

// Commit is the metadata of a single commit.
type Commit struct {
	SHA       string    `json:"sha" toon:"sha"`
	Message   string    `json:"message" toon:"message"`
	Author    string    `json:"author" toon:"author"`
	Date      time.Time `json:"date" toon:"date"`
	Additions int       `json:"additions" toon:"additions"`
	Deletions int       `json:"deletions" toon:"deletions"`
}

// ShortSHA returns the first 7 characters of the commit SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// Summary returns "<short sha> - <message prefix>" with the message cut to 50 characters.
func (c Commit) Summary() string {
	msg := []rune(c.Message)
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return c.ShortSHA() + " - " + string(msg)
}

// RepoStats holds repository-level statistics from a hosting service.
type RepoStats struct {
	Name       string    `json:"name" toon:"name"`
	Stars      int       `json:"stars" toon:"stars"`
	Forks      int       `json:"forks" toon:"forks"`
	OpenIssues int       `json:"open_issues" toon:"open_issues"`
	Language   string    `json:"language" toon:"language"`
	CreatedAt  time.Time `json:"created_at" toon:"created_at"`
}
