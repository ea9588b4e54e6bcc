// Package source provides the changed-file sources of a commit: the GitHub
// API and a local git repository.
package source

import (
	"strings"

	"github.com/panbanda/commitlens/pkg/review"
)

// DefaultExtensions are the file suffixes treated as source code.
var DefaultExtensions = []string{".py", ".js", ".ts", ".java", ".cpp", ".cs", ".go"}

// DefaultRecentLimit is the number of commits listed when no limit is given.
const DefaultRecentLimit = 10

// Filter selects the files whose changes are analyzed.
type Filter struct {
	extensions []string
}

// NewFilter creates a filter accepting paths that end with one of exts.
// An empty list means DefaultExtensions.
func NewFilter(exts []string) Filter {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return Filter{extensions: normalized}
}

// Match reports whether path has an accepted extension.
func (f Filter) Match(path string) bool {
	for _, ext := range f.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Extensions returns the accepted suffixes.
func (f Filter) Extensions() []string {
	return append([]string(nil), f.extensions...)
}

// Ensure sources implement the collaborator interfaces.
var (
	_ review.ChangeSource = (*GitHub)(nil)
	_ review.CommitLister = (*GitHub)(nil)
	_ review.ChangeSource = (*Git)(nil)
	_ review.CommitLister = (*Git)(nil)
)
