package main

import (
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitlens/internal/output"
	"github.com/panbanda/commitlens/pkg/source"
)

func recentCmd() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List recent commits",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of commits",
				Value:   source.DefaultRecentLimit,
			},
			sinceFlag(),
		},
		Action: runRecent,
	}
}

func runRecent(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := validateFor(cfg, false); err != nil {
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
	src, err := newSources(cfg, logger, since)
	if err != nil {
		return err
	}

	commits, err := src.lister.RecentCommits(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(output.CommitsView(commits))
}

func repoCmd() *cli.Command {
	return &cli.Command{
		Name:   "repo",
		Usage:  "Show GitHub repository statistics",
		Action: runRepo,
	}
}

func runRepo(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.UsesGitHub() {
		return errors.New("repo requires a GitHub repository (--repo owner/name)")
	}
	if err := validateFor(cfg, false); err != nil {
		return err
	}
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	src, err := newSources(cfg, logger, time.Time{})
	if err != nil {
		return err
	}

	stats, err := src.github.RepoStats(c.Context)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(output.RepoView(*stats))
}
