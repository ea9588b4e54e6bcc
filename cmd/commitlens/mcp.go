package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/commitlens/internal/mcpserver"
	"github.com/panbanda/commitlens/pkg/analyzer/score"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP server for LLM tool integration",
		Description: `Starts a Model Context Protocol (MCP) server over stdio.

The server exposes commit analysis as tools that LLMs can invoke:
  - analyze_commits: Quality score, issues and metrics per commit
  - recent_commits: Recent commits of the configured repository
  - file_metrics: Structural metrics of a code snippet

Configure in Claude Desktop (claude_desktop_config.json):
  {
    "mcpServers": {
      "commitlens": {
        "command": "commitlens",
        "args": ["--path", "/path/to/repo", "mcp"]
      }
    }
  }`,
		Action: runMCP,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP server manifest",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
	}
}

func runMCP(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := validateFor(cfg, true); err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr.
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	ctx := c.Context
	src, err := newSources(cfg, logger, time.Time{})
	if err != nil {
		return err
	}
	qualitative, err := newQualitative(ctx, cfg, logger)
	if err != nil {
		return err
	}
	reviewer, err := newReviewer(cfg, src.changes, qualitative, logger, nil)
	if err != nil {
		return err
	}

	server := mcpserver.NewServer(version, mcpserver.Deps{
		Analyzer:  reviewer,
		Lister:    src.lister,
		Extractor: newExtractor(cfg),
		Combiner:  score.New(score.WithWeights(cfg.Score.Weights)),
	})
	return server.Run(ctx)
}
