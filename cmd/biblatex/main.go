// Package main is the entry point for the biblatex CLI.
package main

import (
	"errors"
	"os"

	"github.com/jonaspleyer/biblatex/internal/cli"
	"github.com/jonaspleyer/biblatex/internal/logging"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrIssuesFound) {
		// ErrIssuesFound is only a signal for the exit code; the findings
		// were already printed.
		logging.Default().Error("command failed", logging.FieldError, err)
	}
	return cli.ExitCodeForError(err)
}
