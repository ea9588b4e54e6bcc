package models

import "time"

// Issue is a code issue reported by the qualitative analyzer.
type Issue struct {
	Type        string `json:"type" toon:"type"`
	Severity    string `json:"severity" toon:"severity"`
	Description string `json:"description" toon:"description"`
}

// SecurityConcern is a security finding reported by the qualitative analyzer.
type SecurityConcern struct {
	Level       string `json:"level" toon:"level"`
	Description string `json:"description" toon:"description"`
}

// ExternalAnalysis is the qualitative review of a change set.
// QualityScore is on a 0-10 scale.
type ExternalAnalysis struct {
	QualityScore      float64           `json:"quality_score" toon:"quality_score"`
	Issues            []Issue           `json:"issues" toon:"issues"`
	SecurityConcerns  []SecurityConcern `json:"security_concerns" toon:"security_concerns"`
	PerformanceImpact string            `json:"performance_impact" toon:"performance_impact"`
	Recommendations   []string          `json:"recommendations" toon:"recommendations"`
}

// AnalysisResult is the final analysis of one commit.
// Recommendations holds the external recommendations followed by the
// metric-derived ones.
type AnalysisResult struct {
	CommitID          string            `json:"commit_id" toon:"commit_id"`
	QualityScore      float64           `json:"quality_score" toon:"quality_score"`
	Issues            []Issue           `json:"issues" toon:"issues"`
	SecurityConcerns  []SecurityConcern `json:"security_concerns" toon:"security_concerns"`
	PerformanceImpact string            `json:"performance_impact" toon:"performance_impact"`
	Recommendations   []string          `json:"recommendations" toon:"recommendations"`
	Metrics           AggregatedMetrics `json:"metrics" toon:"metrics"`
	Files             []FileMetrics     `json:"files,omitempty" toon:"files"`
	AnalyzedAt        time.Time         `json:"analyzed_at" toon:"analyzed_at"`
}
