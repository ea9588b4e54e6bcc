// Package llm provides the qualitative analyzer backed by a generative
// language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// Provider selects the backend serving the model.
type Provider string

const (
	ProviderGemini   Provider = "gemini"
	ProviderVertexAI Provider = "vertex-ai"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultLocation    = "us-central1"
	DefaultTemperature = 0.3
)

// Config configures the model client.
type Config struct {
	Provider    Provider `koanf:"provider" toml:"provider"`
	Model       string   `koanf:"model" toml:"model"`
	APIKey      string   `koanf:"api_key" toml:"api_key"`
	Project     string   `koanf:"project" toml:"project"`
	Location    string   `koanf:"location" toml:"location"`
	Temperature float32  `koanf:"temperature" toml:"temperature"`
	BaseURL     string   `koanf:"base_url" toml:"base_url,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderGemini,
		Model:       DefaultModel,
		Location:    DefaultLocation,
		Temperature: DefaultTemperature,
	}
}

// generator is the part of *genai.Models the analyzer uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Analyzer asks a generative model to review a change set.
type Analyzer struct {
	gen         generator
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ review.QualitativeAnalyzer = (*Analyzer)(nil)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l.With("component", "llm")
		}
	}
}

// New creates an Analyzer for cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Analyzer, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Provider {
	case ProviderGemini, "":
		if cfg.APIKey == "" {
			return nil, errors.New("gemini provider requires an API key")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	case ProviderVertexAI:
		if cfg.Project == "" {
			return nil, errors.New("vertex-ai provider requires a project")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		if cc.Location == "" {
			cc.Location = DefaultLocation
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newAnalyzer(client.Models, cfg, opts...), nil
}

func newAnalyzer(gen generator, cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		gen:         gen,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      slog.New(slog.DiscardHandler),
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the model name requests are sent to.
func (a *Analyzer) Model() string { return a.model }

// AnalyzeChanges sends the change set to the model and decodes its review.
func (a *Analyzer) AnalyzeChanges(ctx context.Context, files []models.ChangedFile) (*models.ExternalAnalysis, error) {
	prompt := BuildPrompt(files)
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(a.temperature),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: responseSchemaDoc(),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(SystemPrompt)},
		},
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}

	a.logger.Debug("requesting analysis", "model", a.model, "files", len(files), "prompt_bytes", len(prompt))
	resp, err := a.gen.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no response", review.ErrMalformedResponse)
	}
	return ParseAnalysis(resp.Text())
}

func classifyError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %w", review.ErrTransport, review.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %w", review.ErrTransport, err)
}
