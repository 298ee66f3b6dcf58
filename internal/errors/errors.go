package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/smallwins/internal/habits"
	"github.com/julianstephens/smallwins/internal/logger"
	"github.com/julianstephens/smallwins/internal/storage/postgres"
	"github.com/julianstephens/smallwins/internal/transfer"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for errors the user can fix, or returns "".
func Hint(err error) string {
	var shape *transfer.ShapeError
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, habits.ErrNotFound):
		return "habits are matched by id or exact name; run 'smallwins list --archived' to see them"
	case stderrors.As(err, &shape):
		return "the file is not a habits export; create one with 'smallwins export'"
	case stderrors.Is(err, postgres.ErrEmbeddedCredentials):
		return "store a connection string with a password using 'smallwins config set-connection'"
	}
	return ""
}

// Fatal logs an error, prints it with any hint, and exits with code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
