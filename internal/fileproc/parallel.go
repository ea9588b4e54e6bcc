// Package fileproc provides bounded concurrent processing of changed files
// and other per-item work.
package fileproc

import (
	"context"
	"runtime"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mixed CGO parsing and regex workload of metrics extraction.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each item is processed.
type ProgressFunc func()

// Workers resolves a configured worker count. Values <= 0 mean 2x NumCPU.
func Workers(maxWorkers int) int {
	if maxWorkers <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return maxWorkers
}

// Map applies fn to every item on at most maxWorkers goroutines. Result i
// always corresponds to items[i], whatever the completion order.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func Map[T, R any](items []T, maxWorkers int, fn func(T) R, onProgress ProgressFunc) []R {
	if len(items) == 0 {
		return nil
	}

	results := make([]R, len(items))
	p := pool.New().WithMaxGoroutines(Workers(maxWorkers))
	for i, item := range items {
		p.Go(func() {
			results[i] = fn(item)
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	return results
}

// MapContext is Map for fallible, cancellable work. Every item gets a slot;
// failed items hold the zero value and their error. Items not yet started
// when ctx is cancelled fail with ctx.Err().
func MapContext[T, R any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	fn func(context.Context, T) (R, error),
	onProgress ProgressFunc,
) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	p := pool.New().WithMaxGoroutines(Workers(maxWorkers))
	for i, item := range items {
		p.Go(func() {
			defer func() {
				if onProgress != nil {
					onProgress()
				}
			}()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = fn(ctx, item)
		})
	}
	p.Wait()

	return results, errs
}

// ExtractFunc computes a per-file value from a changed file.
type ExtractFunc[R any] func(models.ChangedFile) R

// MapChangedFiles runs fn over files in parallel, preserving order.
func MapChangedFiles[R any](files []models.ChangedFile, maxWorkers int, fn ExtractFunc[R]) []R {
	return Map(files, maxWorkers, fn, nil)
}
