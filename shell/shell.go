// Package shell runs external OS commands and reports their combined output
// and exit status. It is the only package in this module that crosses the
// process boundary; everything above it takes a Runner so that tests can
// substitute a scripted double (see shell/shelltest).
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Command describes a single external command invocation.
type Command struct {
	Cmd  string   // binary name or path
	Args []string // arguments, unquoted
}

// NewCommand creates a Command from a binary and its arguments.
func NewCommand(binary string, args ...string) *Command {
	return &Command{Cmd: binary, Args: args}
}

// ParseCommand parses a shell command string into a Command, handling quoted
// arguments.
func ParseCommand(cmdStr string) (*Command, error) {
	parts, err := shlex.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}
	if len(parts) == 0 {
		return nil, errors.New("empty command")
	}
	return &Command{Cmd: parts[0], Args: parts[1:]}, nil
}

// String returns a shell-quoted representation of the command, suitable for
// logging and error messages.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}
	var b strings.Builder
	b.WriteString(c.Cmd)
	for _, arg := range c.Args {
		b.WriteString(" ")
		if arg == "" || strings.ContainsAny(arg, " \t\"") {
			fmt.Fprintf(&b, "%q", arg)
		} else {
			b.WriteString(arg)
		}
	}
	return b.String()
}

// Validate checks that the command is well-formed.
func (c *Command) Validate() error {
	if c == nil {
		return errors.New("command cannot be nil")
	}
	if strings.TrimSpace(c.Cmd) == "" {
		return errors.New("command binary cannot be empty")
	}
	return nil
}

// Result holds the outcome of a completed command.
type Result struct {
	Output   []byte // stdout and stderr, merged
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands. A returned error means the command could not be
// run at all (binary missing, context cancelled); a nonzero exit code is
// reported through the Result, not the error.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// Output runs a command and returns its merged output, converting a nonzero
// exit into an *ExitError. This is the raise-on-error mode that most callers
// want.
func Output(ctx context.Context, r Runner, cmd *Command) ([]byte, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return res.Output, &ExitError{Command: cmd, ExitCode: res.ExitCode, Output: res.Output}
	}
	return res.Output, nil
}
