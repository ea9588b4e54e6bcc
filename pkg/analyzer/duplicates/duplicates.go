// Package duplicates measures repeated line windows within a single text.
package duplicates

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// DefaultWindow is the number of consecutive lines compared as one chunk.
const DefaultWindow = 3

// Detector scores how much of a text consists of repeated line windows.
// It is safe for concurrent use when its PatternCache is.
type Detector struct {
	cache  *PatternCache
	window int
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithPatternCache shares a matcher cache across detectors or runs.
func WithPatternCache(c *PatternCache) Option {
	return func(d *Detector) {
		d.cache = c
	}
}

// WithWindow sets the window size in lines. Values below 1 are ignored.
func WithWindow(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.window = n
		}
	}
}

// New creates a detector with its own default-sized cache.
func New(opts ...Option) *Detector {
	d := &Detector{window: DefaultWindow}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache == nil {
		d.cache = NewPatternCache(DefaultCacheSize)
	}
	return d
}

// Cache returns the detector's matcher cache.
func (d *Detector) Cache() *PatternCache {
	return d.cache
}

// Score returns the percentage of lines in text that belong to a window
// whose exact text occurs more than once. Windows containing a blank line are
// not considered. Texts shorter than one window score 0.
func (d *Detector) Score(text string) float64 {
	lines := strings.Split(text, "\n")
	if len(lines) < d.window {
		return 0
	}

	marked := roaring.New()
	for i := 0; i+d.window <= len(lines); i++ {
		block := lines[i : i+d.window]
		if hasBlank(block) {
			continue
		}
		if d.cache.Matcher(strings.Join(block, "\n")).Count(text, 2) > 1 {
			marked.AddRange(uint64(i), uint64(i+d.window))
		}
	}

	return float64(marked.GetCardinality()) / float64(len(lines)) * 100
}

func hasBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			return true
		}
	}
	return false
}
