package models

// ComplexityMethod records which strategy produced a complexity value.
type ComplexityMethod string

const (
	ComplexityStructured ComplexityMethod = "structured"
	ComplexityHeuristic  ComplexityMethod = "heuristic"
)

// FileMetrics are the structural metrics of one changed file.
type FileMetrics struct {
	Path             string           `json:"path" toon:"path"`
	Complexity       float64          `json:"complexity" toon:"complexity"`
	ComplexityMethod ComplexityMethod `json:"complexity_method" toon:"complexity_method"`
	Maintainability  float64          `json:"maintainability" toon:"maintainability"`   // 0-100
	DuplicationScore float64          `json:"duplication_score" toon:"duplication_score"` // 0-100
	LinesOfCode      int              `json:"lines_of_code" toon:"lines_of_code"`
	CommentRatio     float64          `json:"comment_ratio" toon:"comment_ratio"` // 0-1
}

// AggregatedMetrics summarizes the metrics of all files in a commit.
type AggregatedMetrics struct {
	AvgComplexity         float64 `json:"avg_complexity" toon:"avg_complexity"`
	MaintainabilityIndex  float64 `json:"maintainability_index" toon:"maintainability_index"`
	DuplicationPercentage float64 `json:"duplication_percentage" toon:"duplication_percentage"`
	TotalLines            int     `json:"total_lines" toon:"total_lines"`
	AvgCommentRatio       float64 `json:"avg_comment_ratio" toon:"avg_comment_ratio"`
}

// NeutralMetrics is the aggregate of an empty file list.
func NeutralMetrics() AggregatedMetrics {
	return AggregatedMetrics{MaintainabilityIndex: 100}
}
