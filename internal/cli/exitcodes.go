package cli

import (
	"errors"
	"os"
)

// Exit codes for biblatex.
const (
	// ExitSuccess indicates successful execution with clean input.
	ExitSuccess = 0

	// ExitIssuesFound indicates the run completed but found problems:
	// skipped blocks, duplicate records or invalid cite keys.
	ExitIssuesFound = 1

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrIssuesFound signals a non-zero exit after the findings were already
// printed; it never carries a message of its own.
var ErrIssuesFound = errors.New("issues found")

// ExitCodeForError maps an Execute error to the process exit code.
func ExitCodeForError(err error) int {
	var pathErr *os.PathError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrIssuesFound):
		return ExitIssuesFound
	case errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
