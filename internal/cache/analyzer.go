package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// Analyzer serves qualitative analyses from a Cache and asks the wrapped
// analyzer on a miss. Only successful analyses are stored.
type Analyzer struct {
	inner     review.QualitativeAnalyzer
	cache     *Cache
	namespace string
	logger    *slog.Logger
}

var _ review.QualitativeAnalyzer = (*Analyzer)(nil)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithNamespace separates entries produced by different models.
func WithNamespace(ns string) AnalyzerOption {
	return func(a *Analyzer) { a.namespace = ns }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l.With("component", "cache")
		}
	}
}

// NewAnalyzer wraps inner with c.
func NewAnalyzer(inner review.QualitativeAnalyzer, c *Cache, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		inner:  inner,
		cache:  c,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the cache key of a change set.
func (a *Analyzer) Key(files []models.ChangedFile) (string, error) {
	data, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return a.namespace + ":" + HashBytes(data), nil
}

// AnalyzeChanges returns the cached analysis of files or computes it.
func (a *Analyzer) AnalyzeChanges(ctx context.Context, files []models.ChangedFile) (*models.ExternalAnalysis, error) {
	if a.cache == nil || !a.cache.Enabled() {
		return a.inner.AnalyzeChanges(ctx, files)
	}

	key, err := a.Key(files)
	if err != nil {
		return a.inner.AnalyzeChanges(ctx, files)
	}

	if data, ok := a.cache.Get(key); ok {
		var cached models.ExternalAnalysis
		if err := json.Unmarshal(data, &cached); err == nil {
			a.logger.Debug("analysis cache hit", "key", key)
			return &cached, nil
		}
		_ = a.cache.Invalidate(key)
	}

	analysis, err := a.inner.AnalyzeChanges(ctx, files)
	if err != nil || analysis == nil {
		return analysis, err
	}

	data, err := json.Marshal(analysis)
	if err == nil {
		err = a.cache.Set(key, data)
	}
	if err != nil {
		a.logger.Warn("failed to store analysis", "key", key, "error", err)
	}
	return analysis, nil
}
