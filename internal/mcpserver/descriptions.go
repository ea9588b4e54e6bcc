package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeCommits() string {
	return `Scores the quality of one or more commits by combining a model-based code review with structural metrics of the changed code.

USE WHEN:
- Reviewing a commit before merging or releasing it
- Comparing the quality of several recent commits
- Looking for risky changes (bugs, security concerns) in a commit range

INTERPRETING RESULTS:
- quality_score is on a 0-10 scale: 8 and above is good, 6 to 8 is acceptable, below 6 needs attention
- The score mixes the model's score with complexity, duplication and maintainability of the changed lines
- A commit with no analyzable source files scores on metrics only
- Each commit is independent; a failed commit carries an error and does not affect the others

METRICS RETURNED:
- Per-commit: quality_score, issues, security_concerns, performance_impact, recommendations
- Aggregated metrics: avg_complexity, maintainability_index, duplication_percentage, total_lines, avg_comment_ratio
- Per-file metrics for every analyzed file`
}

func describeRecentCommits() string {
	return `Lists the most recent commits of the configured repository.

USE WHEN:
- Choosing which commits to pass to analyze_commits
- Getting a quick overview of recent activity

INTERPRETING RESULTS:
- Commits are newest first
- additions and deletions count changed lines across all files

METRICS RETURNED:
- Per-commit: sha, message, author, date, additions, deletions`
}

func describeFileMetrics() string {
	return `Computes structural metrics for a piece of source code or a patch without calling any external service.

USE WHEN:
- Checking a snippet before committing it
- Explaining why a commit received metric-based recommendations

INTERPRETING RESULTS:
- complexity counts decision points; above 15 suggests splitting the code
- maintainability is 0-100; below 65 suggests simplifying
- duplication_score is the percentage of lines inside repeated 3-line chunks; above 10 suggests refactoring
- complexity_method is "structured" when the code parsed cleanly and "heuristic" otherwise
- When ai_score is given, the combined score and recommendations are returned too

METRICS RETURNED:
- complexity, complexity_method, maintainability, duplication_score, lines_of_code, comment_ratio
- Optional: score, metrics_score, recommendations`
}
