package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

// ResultView renders one commit analysis.
type ResultView struct {
	Result *models.AnalysisResult
}

func (v *ResultView) RenderData() any { return v.Result }

func (v *ResultView) RenderText(w io.Writer, colored bool) error {
	r := v.Result
	heading(w, "Commit "+shortID(r.CommitID), "=", colored)

	score := fmt.Sprintf("%.1f/10", r.QualityScore)
	if colored {
		score = ScoreColor(r.QualityScore, score)
	}
	fmt.Fprintf(w, "Quality Score: %s\n\n", score)

	writeTable(w, []string{"Metric", "Value"}, metricRows(r.Metrics), nil)
	fmt.Fprintln(w)

	if len(r.Files) > 0 {
		writeTable(w, fileHeaders, fileRows(r.Files), nil)
		fmt.Fprintln(w)
	}

	listText(w, "Issues Found", len(r.Issues), func(i int) string {
		is := r.Issues[i]
		label := is.Type + " (" + is.Severity + ")"
		if colored {
			label = SeverityColor(is.Severity, label)
		}
		return label + ": " + is.Description
	})
	listText(w, "Security Concerns", len(r.SecurityConcerns), func(i int) string {
		c := r.SecurityConcerns[i]
		label := c.Level
		if colored {
			label = SeverityColor(c.Level, label)
		}
		return label + ": " + c.Description
	})
	if r.PerformanceImpact != "" {
		fmt.Fprintf(w, "Performance Impact: %s\n\n", r.PerformanceImpact)
	}
	listText(w, "Recommendations", len(r.Recommendations), func(i int) string {
		return r.Recommendations[i]
	})
	return nil
}

func (v *ResultView) RenderMarkdown(w io.Writer) error {
	r := v.Result
	fmt.Fprintf(w, "## Commit %s\n\n", shortID(r.CommitID))
	fmt.Fprintf(w, "**Quality Score:** %.1f/10\n\n", r.QualityScore)

	writeMarkdownTable(w, []string{"Metric", "Value"}, metricRows(r.Metrics), nil)
	fmt.Fprintln(w)
	if len(r.Files) > 0 {
		writeMarkdownTable(w, fileHeaders, fileRows(r.Files), nil)
		fmt.Fprintln(w)
	}

	listMarkdown(w, "Issues Found", len(r.Issues), func(i int) string {
		is := r.Issues[i]
		return fmt.Sprintf("**%s** (%s): %s", is.Type, is.Severity, is.Description)
	})
	listMarkdown(w, "Security Concerns", len(r.SecurityConcerns), func(i int) string {
		c := r.SecurityConcerns[i]
		return fmt.Sprintf("**%s**: %s", c.Level, c.Description)
	})
	if r.PerformanceImpact != "" {
		fmt.Fprintf(w, "### Performance Impact\n\n%s\n\n", r.PerformanceImpact)
	}
	listMarkdown(w, "Recommendations", len(r.Recommendations), func(i int) string {
		return r.Recommendations[i]
	})
	return nil
}

// BatchView renders the results of analyzing several commits.
type BatchView struct {
	Items []review.BatchResult
}

type batchItem struct {
	CommitID string                 `json:"commit_id" toon:"commit_id"`
	Result   *models.AnalysisResult `json:"result,omitempty" toon:"result,omitempty"`
	Error    string                 `json:"error,omitempty" toon:"error,omitempty"`
}

func (v *BatchView) RenderData() any {
	items := make([]batchItem, len(v.Items))
	for i, it := range v.Items {
		items[i] = batchItem{CommitID: it.CommitID, Result: it.Result}
		if it.Err != nil {
			items[i].Error = it.Err.Error()
		}
	}
	return items
}

func (v *BatchView) RenderText(w io.Writer, colored bool) error {
	for i, it := range v.Items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if it.Err != nil {
			msg := fmt.Sprintf("Commit %s failed: %v", shortID(it.CommitID), it.Err)
			if colored {
				msg = color.RedString(msg)
			}
			fmt.Fprintln(w, msg)
			continue
		}
		if err := (&ResultView{Result: it.Result}).RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (v *BatchView) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Commit Analysis\n\n")
	for _, it := range v.Items {
		if it.Err != nil {
			fmt.Fprintf(w, "## Commit %s\n\n> failed: %v\n\n", shortID(it.CommitID), it.Err)
			continue
		}
		if err := (&ResultView{Result: it.Result}).RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

// CommitsView renders a list of commits.
func CommitsView(commits []models.Commit) *Table {
	rows := make([][]string, len(commits))
	for i, c := range commits {
		rows[i] = []string{
			c.ShortSHA(),
			c.Date.Format(time.DateOnly),
			c.Author,
			"+" + strconv.Itoa(c.Additions) + " -" + strconv.Itoa(c.Deletions),
			strings.TrimPrefix(c.Summary(), c.ShortSHA()+" - "),
		}
	}
	return NewTable("Recent Commits", []string{"SHA", "Date", "Author", "Lines", "Message"}, rows, nil, commits)
}

// RepoView renders repository statistics.
func RepoView(s models.RepoStats) *Table {
	rows := [][]string{
		{"Name", s.Name},
		{"Language", s.Language},
		{"Stars", strconv.Itoa(s.Stars)},
		{"Forks", strconv.Itoa(s.Forks)},
		{"Open Issues", strconv.Itoa(s.OpenIssues)},
		{"Created", s.CreatedAt.Format(time.DateOnly)},
	}
	return NewTable("Repository", []string{"Field", "Value"}, rows, nil, s)
}

var fileHeaders = []string{"File", "Complexity", "Method", "Maintainability", "Duplication", "Lines", "Comments"}

func fileRows(files []models.FileMetrics) [][]string {
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{
			f.Path,
			fmt.Sprintf("%.1f", f.Complexity),
			string(f.ComplexityMethod),
			fmt.Sprintf("%.1f", f.Maintainability),
			fmt.Sprintf("%.1f%%", f.DuplicationScore),
			strconv.Itoa(f.LinesOfCode),
			fmt.Sprintf("%.0f%%", f.CommentRatio*100),
		}
	}
	return rows
}

func metricRows(m models.AggregatedMetrics) [][]string {
	return [][]string{
		{"Average complexity", fmt.Sprintf("%.1f", m.AvgComplexity)},
		{"Maintainability index", fmt.Sprintf("%.1f", m.MaintainabilityIndex)},
		{"Duplication", fmt.Sprintf("%.1f%%", m.DuplicationPercentage)},
		{"Total lines", strconv.Itoa(m.TotalLines)},
		{"Comment ratio", fmt.Sprintf("%.0f%%", m.AvgCommentRatio*100)},
	}
}

func listText(w io.Writer, title string, n int, item func(int) string) {
	fmt.Fprintf(w, "%s:\n", title)
	if n == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i := range n {
		fmt.Fprintf(w, "  - %s\n", item(i))
	}
	fmt.Fprintln(w)
}

func listMarkdown(w io.Writer, title string, n int, item func(int) string) {
	fmt.Fprintf(w, "### %s\n\n", title)
	if n == 0 {
		fmt.Fprintln(w, "_None._")
	}
	for i := range n {
		fmt.Fprintf(w, "- %s\n", item(i))
	}
	fmt.Fprintln(w)
}

func shortID(id string) string {
	return models.Commit{SHA: id}.ShortSHA()
}
