package score

// Weights defines the weight of the qualitative score and of each metric in
// the final score.
type Weights struct {
	AI              float64 `json:"ai" toml:"ai" koanf:"ai"`
	Complexity      float64 `json:"complexity" toml:"complexity" koanf:"complexity"`
	Duplication     float64 `json:"duplication" toml:"duplication" koanf:"duplication"`
	Maintainability float64 `json:"maintainability" toml:"maintainability" koanf:"maintainability"`
}

// DefaultWeights returns the default weights (must sum to 1.0).
func DefaultWeights() Weights {
	return Weights{
		AI:              0.5,
		Complexity:      0.2,
		Duplication:     0.15,
		Maintainability: 0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.AI + w.Complexity + w.Duplication + w.Maintainability
}

// Thresholds defines a minimum acceptable final score. Zero disables the check.
type Thresholds struct {
	Score float64 `json:"score" toml:"score" koanf:"score"`
}

// Outcome is the result of combining a qualitative score with metrics.
type Outcome struct {
	Score           float64  `json:"score"`
	MetricsScore    float64  `json:"metrics_score"`
	Recommendations []string `json:"recommendations"`
}

// Passed reports whether the outcome meets t.
func (o Outcome) Passed(t Thresholds) bool {
	return t.Score == 0 || o.Score >= t.Score
}
