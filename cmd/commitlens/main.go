package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(exitCode(err))
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "commitlens",
		Usage:     "Score commit quality from LLM review and code metrics",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Description: `commitlens reviews the changes of a commit with a language model and
combines that review with structural metrics of the changed code
(complexity, maintainability, duplication) into one quality score.

Commits are read from GitHub (--repo owner/name) or from a local git
repository (--path, default ".").`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"COMMITLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "GitHub repository as owner/name",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Local git repository path",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the analysis response cache",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Use the fixed offline analysis instead of calling the model",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (same as --log-level debug)",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			recentCmd(),
			repoCmd(),
			mcpCmd(),
			initCmd(),
		},
	}
}

// exitError carries a process exit code through cli.App.Run.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 1
}

func errorf(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}
