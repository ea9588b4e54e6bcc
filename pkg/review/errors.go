package review

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Stage kinds. An *AnalysisError matches exactly one of these.
var (
	ErrChangeRetrieval  = errors.New("change retrieval failed")
	ErrExternalAnalysis = errors.New("external analysis failed")
)

// Collaborator failure kinds. Sources and analyzers wrap their errors with
// these so callers can tell a missing commit from a flaky network.
var (
	ErrNotFound          = errors.New("not found")
	ErrTransport         = errors.New("transport error")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
)

// Stage names the step of an analysis that failed.
type Stage string

const (
	StageChanges  Stage = "fetch changes"
	StageExternal Stage = "external analysis"
)

func (s Stage) kind() error {
	if s == StageChanges {
		return ErrChangeRetrieval
	}
	return ErrExternalAnalysis
}

// AnalysisError reports which commit and stage failed. It matches both its
// stage kind and the underlying cause with errors.Is.
type AnalysisError struct {
	CommitID string
	Stage    Stage
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze commit %s: %s: %v", e.CommitID, e.Stage, e.Err)
}

// Unwrap returns the stage kind and the cause.
func (e *AnalysisError) Unwrap() []error {
	return []error{e.Stage.kind(), e.Err}
}

// BatchErrors combines the errors of failed slots, or returns nil if every
// commit succeeded.
func BatchErrors(results []BatchResult) error {
	var err error
	for _, r := range results {
		err = multierr.Append(err, r.Err)
	}
	return err
}
