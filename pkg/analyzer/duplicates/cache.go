package duplicates

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the default total number of cached matchers.
const DefaultCacheSize = 4096

const numShards = 16

// Matcher counts non-overlapping occurrences of one exact chunk of text.
type Matcher interface {
	// Count returns at most limit occurrences; a negative limit means all.
	Count(text string, limit int) int
}

// regexpMatcher is the compiled form of a chunk.
type regexpMatcher struct {
	re *regexp.Regexp
}

func (m *regexpMatcher) Count(text string, limit int) int {
	return len(m.re.FindAllStringIndex(text, limit))
}

// literalMatcher serves chunks the regexp parser rejects, such as invalid
// UTF-8. strings.Count is also non-overlapping.
type literalMatcher string

func (m literalMatcher) Count(text string, limit int) int {
	n := strings.Count(text, string(m))
	if limit >= 0 && n > limit {
		return limit
	}
	return n
}

// PatternCache memoizes compiled exact-text matchers keyed by chunk text.
// Entries are spread over independently locked LRU shards so concurrent
// extraction of different files rarely contends. A cache created with size 0
// compiles on every lookup and stores nothing.
type PatternCache struct {
	shards []*cacheShard
	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheShard struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// CacheStats reports lookup counters.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewPatternCache creates a cache holding at most size matchers.
func NewPatternCache(size int) *PatternCache {
	c := &PatternCache{}
	if size <= 0 {
		return c
	}

	n := min(numShards, size)
	perShard := (size + n - 1) / n
	c.shards = make([]*cacheShard, n)
	for i := range c.shards {
		c.shards[i] = &cacheShard{lru: lru.New(perShard)}
	}
	return c
}

// Matcher returns the compiled matcher for chunk, compiling and caching it
// on a miss.
func (c *PatternCache) Matcher(chunk string) Matcher {
	if c == nil || len(c.shards) == 0 {
		if c != nil {
			c.misses.Add(1)
		}
		return compileLiteral(chunk)
	}

	shard := c.shards[xxhash.Sum64String(chunk)%uint64(len(c.shards))]

	shard.mu.Lock()
	if v, ok := shard.lru.Get(chunk); ok {
		shard.mu.Unlock()
		c.hits.Add(1)
		return v.(Matcher)
	}
	shard.mu.Unlock()

	c.misses.Add(1)
	m := compileLiteral(chunk)

	shard.mu.Lock()
	shard.lru.Add(chunk, m)
	shard.mu.Unlock()

	return m
}

// Len returns the number of cached matchers.
func (c *PatternCache) Len() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.lru.Len()
		s.mu.Unlock()
	}
	return total
}

// Stats returns hit and miss counts since creation.
func (c *PatternCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// compileLiteral never fails: chunks that do not compile are counted as
// plain substrings.
func compileLiteral(chunk string) Matcher {
	re, err := regexp.Compile(regexp.QuoteMeta(chunk))
	if err != nil {
		return literalMatcher(chunk)
	}
	return &regexpMatcher{re: re}
}
