package shell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommandNotFound indicates that the command's binary is not installed or
// not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// ExitError reports a command that ran to completion with a nonzero exit
// code. It carries the merged output so callers can pattern-match tool
// messages without re-running anything.
type ExitError struct {
	Command  *Command
	ExitCode int
	Output   []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.Command.String(), e.ExitCode)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + out
	}
	return msg
}

// OutputContains reports whether the command's merged output contains the
// given substring, case-insensitively.
func (e *ExitError) OutputContains(s string) bool {
	return strings.Contains(strings.ToLower(string(e.Output)), strings.ToLower(s))
}
