package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitlens/internal/cache"
	"github.com/panbanda/commitlens/internal/logging"
	"github.com/panbanda/commitlens/internal/output"
	"github.com/panbanda/commitlens/pkg/analyzer/complexity"
	"github.com/panbanda/commitlens/pkg/analyzer/duplicates"
	"github.com/panbanda/commitlens/pkg/analyzer/metrics"
	"github.com/panbanda/commitlens/pkg/analyzer/score"
	"github.com/panbanda/commitlens/pkg/config"
	"github.com/panbanda/commitlens/pkg/llm"
	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
	"github.com/panbanda/commitlens/pkg/source"
)

// loadConfig reads the config file and layers environment and flags over it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}
	cfg.ApplyEnv(os.LookupEnv)

	if v := c.String("repo"); v != "" {
		cfg.GitHub.Repository = v
	}
	if v := c.String("path"); v != "" {
		cfg.Git.Path = v
		cfg.GitHub.Repository = ""
	}
	if v := c.String("format"); v != "" {
		cfg.Output.Format = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("offline") {
		cfg.LLM.Provider = config.ProviderStatic
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := output.ParseFormat(cfg.Output.Format)
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, c.App.Writer, cfg.Output.Color && c.App.Writer == os.Stdout), nil
}

// sources bundles the commit source selected by the configuration.
type sources struct {
	changes review.ChangeSource
	lister  review.CommitLister
	github  *source.GitHub
}

// newSources builds the commit source. A non-zero since limits recent
// commit listings.
func newSources(cfg *config.Config, logger *slog.Logger, since time.Time) (*sources, error) {
	filter := source.NewFilter(cfg.Analysis.Extensions)

	if cfg.UsesGitHub() {
		opts := []source.GitHubOption{
			source.WithGitHubFilter(filter),
			source.WithGitHubLogger(logger),
			source.WithGitHubSince(since),
		}
		if cfg.GitHub.BaseURL != "" {
			opts = append(opts, source.WithBaseURL(cfg.GitHub.BaseURL))
		}
		gh, err := source.NewGitHub(cfg.GitHub.Token, cfg.GitHub.Repository, opts...)
		if err != nil {
			return nil, err
		}
		return &sources{changes: gh, lister: gh, github: gh}, nil
	}

	path := cfg.Git.Path
	if path == "" {
		path = "."
	}
	g, err := source.NewGit(path,
		source.WithGitFilter(filter),
		source.WithGitLogger(logger),
		source.WithGitSince(since),
	)
	if err != nil {
		return nil, err
	}
	return &sources{changes: g, lister: g}, nil
}

func sinceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "since",
		Usage: "Only list commits newer than a duration (72h) or date (2006-01-02, RFC 3339)",
	}
}

// parseSince converts a --since value to an absolute time relative to now.
// An empty value returns the zero time.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("invalid --since %q: duration must be positive", value)
		}
		return now.Add(-d), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want a duration, YYYY-MM-DD or RFC 3339 time", value)
}

// newQualitative builds the qualitative analyzer, wrapped in the response
// cache when caching is enabled.
func newQualitative(ctx context.Context, cfg *config.Config, logger *slog.Logger) (review.QualitativeAnalyzer, error) {
	if cfg.LLM.Provider == config.ProviderStatic {
		return llm.NewStatic(), nil
	}

	a, err := llm.New(ctx, cfg.LLM, llm.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return a, nil
	}

	c, err := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.TTL)*time.Hour, true)
	if err != nil {
		logger.Warn("analysis cache disabled", "dir", cfg.Cache.Dir, "error", err)
		return a, nil
	}
	return cache.NewAnalyzer(a, c,
		cache.WithNamespace(string(cfg.LLM.Provider)+"/"+a.Model()),
		cache.WithLogger(logger),
	), nil
}

func newExtractor(cfg *config.Config) *metrics.Extractor {
	pc := duplicates.NewPatternCache(cfg.Analysis.PatternCacheSize)
	return metrics.New(
		metrics.WithComplexity(complexity.Default()),
		metrics.WithDetector(duplicates.New(
			duplicates.WithPatternCache(pc),
			duplicates.WithWindow(cfg.Analysis.DuplicateWindow),
		)),
	)
}

func newReviewer(cfg *config.Config, src review.ChangeSource, q review.QualitativeAnalyzer, logger *slog.Logger, onComplete func(review.BatchResult)) (*review.Analyzer, error) {
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return nil, err
	}
	opts := []review.Option{
		review.WithExtractor(newExtractor(cfg)),
		review.WithCombiner(score.New(score.WithWeights(cfg.Score.Weights))),
		review.WithRetryPolicy(policy),
		review.WithLogger(logger),
		review.WithConcurrency(cfg.Analysis.Concurrency),
		review.WithWorkers(cfg.Analysis.MaxWorkers),
	}
	if onComplete != nil {
		opts = append(opts, review.WithOnComplete(onComplete))
	}
	return review.New(src, q, opts...), nil
}

// validateFor checks only the settings the command needs.
func validateFor(cfg *config.Config, needsModel bool) error {
	check := *cfg
	if !needsModel {
		check.LLM.Provider = config.ProviderStatic
	}
	if err := check.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func failedCommits(results []review.BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func belowThreshold(results []review.BatchResult, min float64) []string {
	var ids []string
	t := score.Thresholds{Score: min}
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		if !(score.Outcome{Score: r.Result.QualityScore}).Passed(t) {
			ids = append(ids, models.Commit{SHA: r.CommitID}.ShortSHA())
		}
	}
	return ids
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
