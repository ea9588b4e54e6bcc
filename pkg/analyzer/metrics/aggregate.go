package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/commitlens/pkg/models"
)

// Aggregate reduces per-file metrics into one summary. Complexity,
// maintainability and comment ratio are averaged; duplication is the worst
// file's score so one heavily duplicated file is not diluted by clean ones.
// An empty list yields models.NeutralMetrics.
func Aggregate(files []models.FileMetrics) models.AggregatedMetrics {
	if len(files) == 0 {
		return models.NeutralMetrics()
	}

	cx := make([]float64, len(files))
	mi := make([]float64, len(files))
	dup := make([]float64, len(files))
	cr := make([]float64, len(files))
	total := 0
	for i, f := range files {
		cx[i] = f.Complexity
		mi[i] = f.Maintainability
		dup[i] = f.DuplicationScore
		cr[i] = f.CommentRatio
		total += f.LinesOfCode
	}

	return models.AggregatedMetrics{
		AvgComplexity:         stat.Mean(cx, nil),
		MaintainabilityIndex:  stat.Mean(mi, nil),
		DuplicationPercentage: floats.Max(dup),
		TotalLines:            total,
		AvgCommentRatio:       stat.Mean(cr, nil),
	}
}
