// Package review sequences the analysis of one or more commits: it fetches
// the changed files, runs the external qualitative analysis and the metrics
// extraction concurrently, and combines both into an AnalysisResult.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc"

	"github.com/panbanda/commitlens/internal/fileproc"
	"github.com/panbanda/commitlens/pkg/analyzer/metrics"
	"github.com/panbanda/commitlens/pkg/analyzer/score"
	"github.com/panbanda/commitlens/pkg/models"
)

// ChangeSource returns the changed files of a commit, restricted to
// recognized source files. Failures wrap ErrNotFound or ErrTransport.
type ChangeSource interface {
	ChangedFiles(ctx context.Context, commitID string) ([]models.ChangedFile, error)
}

// QualitativeAnalyzer produces the external analysis of a set of changes.
// Failures wrap ErrTransport, ErrRateLimited or ErrMalformedResponse.
type QualitativeAnalyzer interface {
	AnalyzeChanges(ctx context.Context, files []models.ChangedFile) (*models.ExternalAnalysis, error)
}

// CommitLister lists the most recent commits of a repository.
type CommitLister interface {
	RecentCommits(ctx context.Context, limit int) ([]models.Commit, error)
}

// BatchResult is one slot of AnalyzeMany.
type BatchResult struct {
	CommitID string                 `json:"commit_id"`
	Result   *models.AnalysisResult `json:"result,omitempty"`
	Err      error                  `json:"-"`
}

// Analyzer orchestrates commit analysis.
type Analyzer struct {
	source      ChangeSource
	qualitative QualitativeAnalyzer
	extractor   *metrics.Extractor
	combiner    *score.Combiner
	retry       RetryPolicy
	logger      *slog.Logger
	concurrency int
	workers     int
	clock       func() time.Time
	newTimer    func() backoff.Timer
	onComplete  func(BatchResult)
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithExtractor sets the per-file metrics extractor.
func WithExtractor(e *metrics.Extractor) Option {
	return func(a *Analyzer) {
		a.extractor = e
	}
}

// WithCombiner sets the score combiner.
func WithCombiner(c *score.Combiner) Option {
	return func(a *Analyzer) {
		a.combiner = c
	}
}

// WithRetryPolicy sets the retry policy of the external analysis call.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Analyzer) {
		a.retry = p
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConcurrency bounds how many commits AnalyzeMany processes at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		a.concurrency = n
	}
}

// WithWorkers bounds per-commit file extraction parallelism (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithClock sets the source of AnalyzedAt timestamps.
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) {
		a.clock = clock
	}
}

// WithTimer sets the factory for retry wait timers.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(a *Analyzer) {
		a.newTimer = newTimer
	}
}

// WithOnComplete registers a callback invoked as each AnalyzeMany slot
// finishes, in completion order.
func WithOnComplete(fn func(BatchResult)) Option {
	return func(a *Analyzer) {
		a.onComplete = fn
	}
}

// New creates an analyzer over the given collaborators.
func New(source ChangeSource, qualitative QualitativeAnalyzer, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:      source,
		qualitative: qualitative,
		retry:       DefaultRetryPolicy(),
		logger:      slog.New(slog.DiscardHandler),
		concurrency: 4,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = metrics.New()
	}
	if a.combiner == nil {
		a.combiner = score.New()
	}
	a.logger = a.logger.With("component", "review")
	return a
}

// Analyze produces the analysis of one commit. It fails with an
// *AnalysisError if the changes cannot be fetched or the external analysis
// fails after its retries; no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, commitID string) (*models.AnalysisResult, error) {
	log := a.logger.With("commit", commitID)

	files, err := a.source.ChangedFiles(ctx, commitID)
	if err != nil {
		log.Warn("fetching changes failed", "error", err)
		return nil, &AnalysisError{CommitID: commitID, Stage: StageChanges, Err: err}
	}
	log.Debug("fetched changes", "files", len(files))

	var (
		external    *models.ExternalAnalysis
		externalErr error
		perFile     []models.FileMetrics
		aggregated  models.AggregatedMetrics
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		external, externalErr = a.analyzeWithRetry(ctx, log, files)
	})
	wg.Go(func() {
		perFile = fileproc.MapChangedFiles(files, a.workers, a.extractor.Extract)
		aggregated = metrics.Aggregate(perFile)
	})
	wg.Wait()

	if externalErr != nil {
		log.Warn("external analysis failed", "error", externalErr)
		return nil, &AnalysisError{CommitID: commitID, Stage: StageExternal, Err: externalErr}
	}

	outcome := a.combiner.Combine(external.QualityScore, aggregated)
	recs := make([]string, 0, len(external.Recommendations)+len(outcome.Recommendations))
	recs = append(recs, external.Recommendations...)
	recs = append(recs, outcome.Recommendations...)

	result := &models.AnalysisResult{
		CommitID:          commitID,
		QualityScore:      outcome.Score,
		Issues:            slices.Clone(external.Issues),
		SecurityConcerns:  slices.Clone(external.SecurityConcerns),
		PerformanceImpact: external.PerformanceImpact,
		Recommendations:   recs,
		Metrics:           aggregated,
		Files:             perFile,
		AnalyzedAt:        a.clock(),
	}
	log.Debug("analysis complete", "score", result.QualityScore, "files", len(perFile))
	return result, nil
}

// AnalyzeMany analyzes commits concurrently. Slot i always holds commit i;
// a failed commit does not affect the others.
func (a *Analyzer) AnalyzeMany(ctx context.Context, commitIDs []string) []BatchResult {
	results, errs := fileproc.MapContext(ctx, commitIDs, max(a.concurrency, 1),
		func(ctx context.Context, id string) (*models.AnalysisResult, error) {
			res, err := a.Analyze(ctx, id)
			if a.onComplete != nil {
				a.onComplete(BatchResult{CommitID: id, Result: res, Err: err})
			}
			return res, err
		}, nil)

	batch := make([]BatchResult, len(commitIDs))
	for i, id := range commitIDs {
		batch[i] = BatchResult{CommitID: id, Result: results[i], Err: errs[i]}
	}
	return batch
}

func (a *Analyzer) analyzeWithRetry(ctx context.Context, log *slog.Logger, files []models.ChangedFile) (*models.ExternalAnalysis, error) {
	var (
		analysis *models.ExternalAnalysis
		attempt  int
	)

	op := func() error {
		attempt++
		res, err := a.qualitative.AnalyzeChanges(ctx, files)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("%w: empty analysis", ErrMalformedResponse)
		}
		analysis = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("external analysis attempt failed", "attempt", attempt, "retry_in", wait, "error", err)
	}

	var timer backoff.Timer
	if a.newTimer != nil {
		timer = a.newTimer()
	}
	if err := a.retry.retry(ctx, op, notify, timer); err != nil {
		return nil, err
	}
	return analysis, nil
}
