// Package score merges an external qualitative score with aggregated
// structural metrics into one final score and metric-driven recommendations.
package score

import "github.com/panbanda/commitlens/pkg/models"

// Recommendations emitted when a metric crosses its limit, in this order.
const (
	RecommendReduceComplexity    = "Consider reducing function complexity in highlighted areas"
	RecommendRefactorDuplication = "Significant code duplication detected. Consider refactoring"
	RecommendSimplify            = "Code maintainability is low. Consider simplifying complex parts"
)

// Metric limits that trigger recommendations.
const (
	ComplexityLimit      = 15.0
	DuplicationLimit     = 10.0
	MaintainabilityFloor = 65.0
)

// Combiner computes final scores. It holds no mutable state.
type Combiner struct {
	weights Weights
}

// Option configures the Combiner.
type Option func(*Combiner)

// WithWeights sets custom weights.
func WithWeights(w Weights) Option {
	return func(c *Combiner) {
		c.weights = w
	}
}

// New creates a combiner with DefaultWeights.
func New(opts ...Option) *Combiner {
	c := &Combiner{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weights returns the weights in use.
func (c *Combiner) Weights() Weights {
	return c.weights
}

// Combine merges aiScore (0-10) with m. The result is not clamped: extreme
// complexity can push it below 0.
func (c *Combiner) Combine(aiScore float64, m models.AggregatedMetrics) Outcome {
	metricsScore := c.MetricsScore(m)
	return Outcome{
		Score:           aiScore*c.weights.AI + metricsScore,
		MetricsScore:    metricsScore,
		Recommendations: Recommendations(m),
	}
}

// MetricsScore returns the metrics-derived part of the final score.
func (c *Combiner) MetricsScore(m models.AggregatedMetrics) float64 {
	return (10-m.AvgComplexity)*c.weights.Complexity +
		(100-m.DuplicationPercentage)*c.weights.Duplication/100 +
		m.MaintainabilityIndex*c.weights.Maintainability/100
}

// Recommendations returns the recommendations triggered by m. Each rule is
// evaluated independently.
func Recommendations(m models.AggregatedMetrics) []string {
	recs := make([]string, 0, 3)
	if m.AvgComplexity > ComplexityLimit {
		recs = append(recs, RecommendReduceComplexity)
	}
	if m.DuplicationPercentage > DuplicationLimit {
		recs = append(recs, RecommendRefactorDuplication)
	}
	if m.MaintainabilityIndex < MaintainabilityFloor {
		recs = append(recs, RecommendSimplify)
	}
	return recs
}
