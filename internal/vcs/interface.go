// Package vcs provides version control system abstractions.
package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository provides access to git repository operations.
type Repository interface {
	// Head returns a reference to the HEAD commit, or ErrEmptyRepository.
	Head() (Reference, error)
	// ResolveCommit resolves a revision (full or short SHA, branch, tag,
	// HEAD~n) to a commit.
	ResolveCommit(rev string) (Commit, error)
	// Log returns a commit iterator starting from HEAD.
	Log(opts *LogOptions) (CommitIterator, error)
	// RepoPath returns the root path of the repository.
	RepoPath() string
}

// Reference represents a git reference (branch, tag, HEAD).
type Reference interface {
	Hash() plumbing.Hash
}

// LogOptions configures the commit log query.
type LogOptions struct {
	// Since drops commits committed before this time.
	Since *time.Time
}

// CommitIterator iterates over commits.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the commit hash.
	Hash() plumbing.Hash
	// NumParents returns the number of parent commits.
	NumParents() int
	// Parent returns the nth parent commit.
	Parent(n int) (Commit, error)
	// Tree returns the tree object for this commit.
	Tree() (Tree, error)
	// Stats returns file stats for this commit.
	Stats() (object.FileStats, error)
	// Author returns commit author information.
	Author() object.Signature
	// Message returns the commit message.
	Message() string
}

// Tree represents a git tree object.
type Tree interface {
	// Diff computes differences between this tree and another, detecting
	// renames.
	Diff(ctx context.Context, to Tree) (Changes, error)
}

// Changes represents a collection of file changes between trees.
type Changes []Change

// Action is the kind of a change.
type Action int

const (
	ActionModify Action = iota
	ActionInsert
	ActionDelete
)

// Change represents a single file change.
type Change interface {
	// FromName returns the source file name (empty for new files).
	FromName() string
	// ToName returns the destination file name (empty for deleted files).
	ToName() string
	// Action returns whether the file was inserted, modified or deleted.
	Action() (Action, error)
	// Patch computes the patch for this change.
	Patch(ctx context.Context) (Patch, error)
}

// Patch represents a diff patch.
type Patch interface {
	FilePatches() []FilePatch
	// String returns the patch in unified diff format.
	String() string
}

// FilePatch represents changes to a single file.
type FilePatch interface {
	IsBinary() bool
	Chunks() []Chunk
}

// Chunk represents a chunk of changes within a file patch.
type Chunk interface {
	Type() ChunkType
	Content() string
}

// ChunkType represents the type of change in a chunk.
type ChunkType int

const (
	ChunkEqual ChunkType = iota
	ChunkAdd
	ChunkDelete
)

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
