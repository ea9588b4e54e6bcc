package duplicates

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d := New()
	if d == nil {
		t.Fatal("New() returned nil")
	}
	if d.window != DefaultWindow {
		t.Errorf("window = %d, want %d", d.window, DefaultWindow)
	}
	if d.Cache() == nil {
		t.Error("cache is nil")
	}
}

func TestNewWithOptions(t *testing.T) {
	c := NewPatternCache(8)
	d := New(WithPatternCache(c), WithWindow(2))
	assert.Same(t, c, d.Cache())
	assert.Equal(t, 2, d.window)

	d = New(WithWindow(0))
	assert.Equal(t, DefaultWindow, d.window)
}

func TestScore(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"two lines", "a\nb", 0},
		{"no repeats", "a\nb\nc\nd\ne", 0},
		// Three identical lines form a single window; it cannot match twice.
		{"single identical window", "x = 1\nx = 1\nx = 1\ny = 2\nz = 3", 0},
		{"repeated block", "a\nb\nc\na\nb\nc", 100},
		{"repeated block with tail", "a\nb\nc\nd\na\nb\nc\ne", 75},
		{"blank lines break windows", "a\n\nb\na\n\nb", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Score(tt.text)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	d := New()
	texts := []string{
		strings.Repeat("x\n", 50),
		strings.Repeat("a\nb\nc\n", 10) + "tail",
		"one",
		"\n\n\n",
		strings.Repeat("\xff\xfe\x00\n", 12),
		"\x00\x00\x00\n\x00\x00\x00\n\x00\x00\x00",
		"caf\xe9\nna\xefve\n\xe0 la\ncaf\xe9\nna\xefve\n\xe0 la",
	}
	for _, text := range texts {
		got := d.Score(text)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestScore_SpecialCharacters(t *testing.T) {
	d := New()
	// Regex metacharacters must be matched literally.
	text := "a.*b\n(c)\n[d]+\na.*b\n(c)\n[d]+"
	assert.InDelta(t, 100.0, d.Score(text), 1e-9)

	assert.InDelta(t, 0.0, d.Score("a.*b\n(c)\n[d]+\naxxb\n(c)\n[d]+"), 1e-9)
}

func TestScore_InvalidUTF8(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"single window", "a\xff\nb\nc\nd", 0},
		{"repeated latin-1 block", "caf\xe9\nb\nc\ncaf\xe9\nb\nc", 100},
		{"repeated block with tail", "\xff\xfe\x00\nb\nc\nd\n\xff\xfe\x00\nb\nc\ne", 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got float64
			require.NotPanics(t, func() { got = d.Score(tt.text) })
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPatternCache_InvalidUTF8Chunk(t *testing.T) {
	c := NewPatternCache(8)
	chunk := "a\xff\nb\nc"

	var m Matcher
	require.NotPanics(t, func() { m = c.Matcher(chunk) })
	assert.Equal(t, 2, m.Count(chunk+"\n"+chunk, -1))
	assert.Equal(t, 1, m.Count(chunk+"\n"+chunk, 1))
	assert.Equal(t, 0, m.Count("a\nb\nc", -1))

	c.Matcher(chunk)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, c.Stats())
}

func TestScore_Idempotent(t *testing.T) {
	d := New()
	text := "a\nb\nc\nd\na\nb\nc\ne"
	first := d.Score(text)
	second := d.Score(text)
	assert.Equal(t, first, second)

	uncached := New(WithPatternCache(NewPatternCache(0)))
	assert.Equal(t, first, uncached.Score(text))
}

func TestPatternCache(t *testing.T) {
	c := NewPatternCache(64)

	m1 := c.Matcher("a\nb\nc")
	m2 := c.Matcher("a\nb\nc")
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, c.Stats())
}

func TestPatternCache_Bounded(t *testing.T) {
	c := NewPatternCache(16)
	for i := range 200 {
		c.Matcher(strings.Repeat("x", i+1))
	}
	assert.LessOrEqual(t, c.Len(), 16)
}

func TestPatternCache_Disabled(t *testing.T) {
	c := NewPatternCache(0)
	m := c.Matcher("a+b")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Count("xa+by", -1))
	assert.Equal(t, 0, m.Count("aab", -1))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestPatternCache_Nil(t *testing.T) {
	var c *PatternCache
	assert.NotNil(t, c.Matcher("x"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, CacheStats{}, c.Stats())
}

func TestPatternCache_Concurrent(t *testing.T) {
	c := NewPatternCache(128)
	d := New(WithPatternCache(c))
	text := "a\nb\nc\nd\na\nb\nc\ne"

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Score(text)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.InDelta(t, 75.0, r, 1e-9)
	}
	stats := c.Stats()
	assert.Equal(t, uint64(32*6), stats.Hits+stats.Misses)
}
