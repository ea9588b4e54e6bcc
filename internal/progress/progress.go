// Package progress shows terminal progress while commits are analyzed.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/commitlens/pkg/review"
)

// Tracker wraps a progress bar counting analyzed commits.
type Tracker struct {
	bar    *progressbar.ProgressBar
	w      io.Writer
	label  string
	failed atomic.Int32
}

// NewSpinner creates a spinner for operations with unknown total count,
// such as fetching the commit list.
func NewSpinner(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, w: w, label: label}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, w: w, label: label}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Complete records one finished commit. It has the signature of
// review.WithOnComplete callbacks.
func (t *Tracker) Complete(r review.BatchResult) {
	if r.Err != nil {
		t.failed.Add(1)
	}
	t.Tick()
}

// Failed returns the number of commits whose analysis failed.
func (t *Tracker) Failed() int {
	return int(t.failed.Load())
}

// FinishSuccess clears the bar and reports failures, if any.
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	if n := t.Failed(); n > 0 {
		fmt.Fprintf(t.w, "  %s: %d failed\n", t.label, n)
	}
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}
