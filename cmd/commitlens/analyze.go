package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitlens/internal/output"
	"github.com/panbanda/commitlens/internal/progress"
	"github.com/panbanda/commitlens/pkg/review"
	"github.com/panbanda/commitlens/pkg/source"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze commits and print their quality scores",
		ArgsUsage: "[sha...]",
		Description: `Analyzes each given commit. With no arguments the most recent commits
are analyzed (see --recent).

Examples:
  commitlens analyze                          # last 10 commits of the repo in "."
  commitlens analyze 1a2b3c4 5d6e7f8          # specific commits
  commitlens --repo acme/api analyze -f json  # GitHub repository, JSON output
  commitlens analyze --min-score 7            # exit 2 if any commit scores below 7`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "recent",
				Usage: "Number of recent commits to analyze when no sha is given",
				Value: source.DefaultRecentLimit,
			},
			sinceFlag(),
			&cli.Float64Flag{
				Name:  "min-score",
				Usage: "Fail when any commit scores below this value (0 disables)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("min-score") {
		cfg.Score.MinScore = c.Float64("min-score")
	}
	if err := validateFor(cfg, true); err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	since, err := parseSince(c.String("since"), time.Now())
	if err != nil {
		return err
	}

	ctx := c.Context
	src, err := newSources(cfg, logger, since)
	if err != nil {
		return err
	}
	qualitative, err := newQualitative(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ids := c.Args().Slice()
	if len(ids) == 0 {
		spinner := progress.NewSpinner(c.App.ErrWriter, "Listing commits")
		commits, err := src.lister.RecentCommits(ctx, c.Int("recent"))
		if err != nil {
			spinner.FinishError(err)
			return err
		}
		spinner.FinishSuccess()
		for _, cm := range commits {
			ids = append(ids, cm.SHA)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no commits to analyze")
	}

	var onComplete func(review.BatchResult)
	var tracker *progress.Tracker
	if !c.Bool("no-progress") {
		tracker = progress.NewTracker(c.App.ErrWriter, "Analyzing commits", len(ids))
		onComplete = tracker.Complete
	}
	reviewer, err := newReviewer(cfg, src.changes, qualitative, logger, onComplete)
	if err != nil {
		return err
	}

	results := reviewer.AnalyzeMany(ctx, ids)
	if tracker != nil {
		tracker.FinishSuccess()
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var view output.Renderable = &output.BatchView{Items: results}
	if len(results) == 1 && results[0].Err == nil {
		view = &output.ResultView{Result: results[0].Result}
	}
	if err := formatter.Output(view); err != nil {
		return err
	}

	if failed := failedCommits(results); failed == len(results) {
		return fmt.Errorf("all %d commits failed: %w", failed, review.BatchErrors(results))
	}
	if low := belowThreshold(results, cfg.Score.MinScore); len(low) > 0 {
		return errorf(2, "%d commit(s) below minimum score %.1f: %s",
			len(low), cfg.Score.MinScore, strings.Join(low, ", "))
	}
	return nil
}
