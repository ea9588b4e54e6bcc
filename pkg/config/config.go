package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/commitlens/pkg/analyzer/duplicates"
	"github.com/panbanda/commitlens/pkg/analyzer/score"
	"github.com/panbanda/commitlens/pkg/llm"
	"github.com/panbanda/commitlens/pkg/review"
	"github.com/panbanda/commitlens/pkg/source"
)

// ProviderStatic selects the fixed offline analyzer.
const ProviderStatic llm.Provider = "static"

// Config holds all configuration options for commitlens.
type Config struct {
	GitHub   GitHubConfig   `koanf:"github" toml:"github"`
	Git      GitConfig      `koanf:"git" toml:"git"`
	LLM      llm.Config     `koanf:"llm" toml:"llm"`
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
	Score    ScoreConfig    `koanf:"score" toml:"score"`
	Retry    RetryConfig    `koanf:"retry" toml:"retry"`
	Cache    CacheConfig    `koanf:"cache" toml:"cache"`
	Log      LogConfig      `koanf:"log" toml:"log"`
	Output   OutputConfig   `koanf:"output" toml:"output"`
}

// GitHubConfig selects a hosted repository.
type GitHubConfig struct {
	Token      string `koanf:"token" toml:"token"`
	Repository string `koanf:"repository" toml:"repository"` // owner/name
	BaseURL    string `koanf:"base_url" toml:"base_url,omitempty"`
}

// GitConfig selects a local repository.
type GitConfig struct {
	Path string `koanf:"path" toml:"path"`
}

// AnalysisConfig tunes the metrics engine.
type AnalysisConfig struct {
	Extensions       []string `koanf:"extensions" toml:"extensions"`
	MaxWorkers       int      `koanf:"max_workers" toml:"max_workers"`
	Concurrency      int      `koanf:"concurrency" toml:"concurrency"`
	PatternCacheSize int      `koanf:"pattern_cache_size" toml:"pattern_cache_size"`
	DuplicateWindow  int      `koanf:"duplicate_window" toml:"duplicate_window"`
}

// ScoreConfig holds the combination weights and the pass threshold.
type ScoreConfig struct {
	Weights  score.Weights `koanf:"weights" toml:"weights"`
	MinScore float64       `koanf:"min_score" toml:"min_score"`
}

// RetryConfig bounds the retries of the qualitative analysis.
// Intervals use Go duration syntax ("4s").
type RetryConfig struct {
	Attempts        int     `koanf:"attempts" toml:"attempts"`
	InitialInterval string  `koanf:"initial_interval" toml:"initial_interval"`
	MaxInterval     string  `koanf:"max_interval" toml:"max_interval"`
	Multiplier      float64 `koanf:"multiplier" toml:"multiplier"`
}

// CacheConfig controls the analysis response cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" toml:"format"` // text, json
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	retry := review.DefaultRetryPolicy()
	return &Config{
		LLM: llm.DefaultConfig(),
		Analysis: AnalysisConfig{
			Extensions:       slices.Clone(source.DefaultExtensions),
			MaxWorkers:       0, // 0 = runtime.NumCPU() * 2
			Concurrency:      4,
			PatternCacheSize: duplicates.DefaultCacheSize,
			DuplicateWindow:  duplicates.DefaultWindow,
		},
		Score: ScoreConfig{
			Weights: score.DefaultWeights(),
		},
		Retry: RetryConfig{
			Attempts:        retry.Attempts,
			InitialInterval: retry.InitialInterval.String(),
			MaxInterval:     retry.MaxInterval.String(),
			Multiplier:      retry.Multiplier,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".commitlens/cache",
			TTL:     24,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames are the file names LoadOrDefault looks for, in order.
var ConfigNames = []string{
	"commitlens.toml",
	"commitlens.yaml",
	"commitlens.yml",
	"commitlens.json",
	".commitlens.toml",
	".commitlens.yaml",
	".commitlens.yml",
	".commitlens.json",
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	for _, dir := range []string{".", ".commitlens"} {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// ApplyEnv fills unset secrets from the environment using lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.GitHub.Token == "" {
		if v, ok := lookup("GITHUB_TOKEN"); ok {
			c.GitHub.Token = v
		}
	}
	if c.LLM.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v, ok := lookup(name); ok && v != "" {
				c.LLM.APIKey = v
				break
			}
		}
	}
	if c.LLM.Project == "" {
		if v, ok := lookup("GOOGLE_CLOUD_PROJECT"); ok {
			c.LLM.Project = v
		}
	}
}

// UsesGitHub reports whether commits are read from GitHub rather than a
// local repository.
func (c *Config) UsesGitHub() bool {
	return c.GitHub.Repository != ""
}

// Validate reports every missing or inconsistent setting.
func (c *Config) Validate() error {
	var errs []error

	if c.UsesGitHub() {
		if c.GitHub.Token == "" {
			errs = append(errs, errors.New("github.token is required when github.repository is set (or set GITHUB_TOKEN)"))
		}
		if owner, name, ok := strings.Cut(c.GitHub.Repository, "/"); !ok || owner == "" || name == "" {
			errs = append(errs, fmt.Errorf("github.repository %q must be owner/name", c.GitHub.Repository))
		}
	}

	switch c.LLM.Provider {
	case llm.ProviderGemini, "":
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("llm.api_key is required for the gemini provider (or set GEMINI_API_KEY)"))
		}
	case llm.ProviderVertexAI:
		if c.LLM.Project == "" {
			errs = append(errs, errors.New("llm.project is required for the vertex-ai provider"))
		}
	case ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %v out of range [0, 2]", c.LLM.Temperature))
	}

	if c.Analysis.DuplicateWindow < 1 {
		errs = append(errs, errors.New("analysis.duplicate_window must be at least 1"))
	}
	if w := c.Score.Weights; w.AI < 0 || w.Complexity < 0 || w.Duplication < 0 || w.Maintainability < 0 {
		errs = append(errs, errors.New("score.weights must not be negative"))
	}

	if _, err := c.RetryPolicy(); err != nil {
		errs = append(errs, err)
	}

	switch c.Log.Format {
	case "text", "json", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// RetryPolicy converts the retry section into a review.RetryPolicy.
func (c *Config) RetryPolicy() (review.RetryPolicy, error) {
	p := review.DefaultRetryPolicy()
	if c.Retry.Attempts < 1 {
		return p, fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	p.Attempts = c.Retry.Attempts

	var err error
	if c.Retry.InitialInterval != "" {
		if p.InitialInterval, err = time.ParseDuration(c.Retry.InitialInterval); err != nil {
			return p, fmt.Errorf("retry.initial_interval: %w", err)
		}
	}
	if c.Retry.MaxInterval != "" {
		if p.MaxInterval, err = time.ParseDuration(c.Retry.MaxInterval); err != nil {
			return p, fmt.Errorf("retry.max_interval: %w", err)
		}
	}
	if c.Retry.Multiplier > 0 {
		p.Multiplier = c.Retry.Multiplier
	}
	return p, nil
}
