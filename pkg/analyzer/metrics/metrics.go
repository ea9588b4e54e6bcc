// Package metrics computes per-file structural metrics of changed text and
// reduces them into one commit-level summary.
package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/panbanda/commitlens/pkg/analyzer/complexity"
	"github.com/panbanda/commitlens/pkg/analyzer/duplicates"
	"github.com/panbanda/commitlens/pkg/models"
)

// Maintainability weights.
const (
	locWeight        = 0.25
	lineLengthWeight = 0.3
	commentWeight    = 0.2
)

// Extractor computes FileMetrics for changed files. It never fails and is
// safe for concurrent use.
type Extractor struct {
	complexity *complexity.Chain
	detector   *duplicates.Detector
}

// Option is a functional option for configuring Extractor.
type Option func(*Extractor)

// WithComplexity replaces the complexity estimation chain.
func WithComplexity(c *complexity.Chain) Option {
	return func(e *Extractor) {
		e.complexity = c
	}
}

// WithDetector replaces the duplication detector.
func WithDetector(d *duplicates.Detector) Option {
	return func(e *Extractor) {
		e.detector = d
	}
}

// WithPatternCache shares a matcher cache with the default detector.
func WithPatternCache(c *duplicates.PatternCache) Option {
	return func(e *Extractor) {
		e.detector = duplicates.New(duplicates.WithPatternCache(c))
	}
}

// New creates an extractor using structured complexity with keyword fallback.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.complexity == nil {
		e.complexity = complexity.Default()
	}
	if e.detector == nil {
		e.detector = duplicates.New()
	}
	return e
}

// Extract computes the metrics of one changed file's patch text.
func (e *Extractor) Extract(f models.ChangedFile) models.FileMetrics {
	return e.ExtractText(f.Path, f.Patch)
}

// ExtractText computes metrics for text; path selects the parser grammar.
func (e *Extractor) ExtractText(path, text string) models.FileMetrics {
	cx := e.complexity.Estimate(path, text)
	return models.FileMetrics{
		Path:             path,
		Complexity:       cx.Value,
		ComplexityMethod: cx.Method,
		Maintainability:  Maintainability(text),
		DuplicationScore: e.detector.Score(text),
		LinesOfCode:      LineCount(text),
		CommentRatio:     CommentRatio(text),
	}
}

// LineCount returns the number of lines that are non-empty after trimming.
func LineCount(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// CommentRatio returns comment lines divided by non-empty lines. A line is a
// comment when it starts with "#" or "//" or contains a block delimiter.
func CommentRatio(text string) float64 {
	var comments, nonEmpty int
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if isCommentLine(trimmed) {
			comments++
		}
	}
	return float64(comments) / float64(max(nonEmpty, 1))
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.Contains(trimmed, "/*") ||
		strings.Contains(trimmed, "*/")
}

// Maintainability returns a simplified maintainability proxy in [0,100].
// Longer, denser and less commented text scores lower.
func Maintainability(text string) float64 {
	loc := LineCount(text)
	avgLineLength := float64(utf8.RuneCountInString(text)) / float64(max(loc, 1))
	ratio := CommentRatio(text)

	mi := 100 - (float64(loc)*locWeight + avgLineLength*lineLengthWeight + (100-ratio*100)*commentWeight)
	return clamp(mi, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
