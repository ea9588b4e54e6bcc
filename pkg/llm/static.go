package llm

import (
	"context"
	"slices"

	"github.com/panbanda/commitlens/pkg/models"
)

// Static returns the same analysis for every change set. It stands in for
// the model when running offline.
type Static struct {
	analysis models.ExternalAnalysis
}

// NewStatic returns a Static analyzer with fixed example content.
func NewStatic() *Static {
	return &Static{analysis: models.ExternalAnalysis{
		QualityScore: 8.5,
		Issues: []models.Issue{
			{Type: "style", Severity: "low", Description: "Example issue"},
		},
		SecurityConcerns: []models.SecurityConcern{
			{Level: "low", Description: "Example concern"},
		},
		PerformanceImpact: "minimal",
		Recommendations:   []string{"Example recommendation"},
	}}
}

// NewStaticWith returns a Static analyzer answering with a.
func NewStaticWith(a models.ExternalAnalysis) *Static {
	return &Static{analysis: a}
}

// AnalyzeChanges returns a copy of the fixed analysis.
func (s *Static) AnalyzeChanges(ctx context.Context, _ []models.ChangedFile) (*models.ExternalAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := s.analysis
	a.Issues = slices.Clone(a.Issues)
	a.SecurityConcerns = slices.Clone(a.SecurityConcerns)
	a.Recommendations = slices.Clone(a.Recommendations)
	return &a, nil
}
