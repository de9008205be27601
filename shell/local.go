package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// LocalRunner executes commands as local subprocesses.
type LocalRunner struct {
	// Logger receives diagnostic output. Defaults to slog.Default().
	Logger *slog.Logger
	// Verbose enables per-invocation logging of the command line, merged
	// output, exit code and timing.
	Verbose bool
}

// NewLocalRunner creates a LocalRunner with the given logger.
func NewLocalRunner(logger *slog.Logger, verbose bool) *LocalRunner {
	return &LocalRunner{Logger: logger, Verbose: verbose}
}

func (r *LocalRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes the command and captures its merged stdout+stderr. A nonzero
// exit is not an error; it is reported in the Result.
func (r *LocalRunner) Run(ctx context.Context, cmd *Command) (*Result, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var invocationID string
	if r.Verbose {
		invocationID = uuid.New().String()
		r.logger().Debug("running command", "id", invocationID, "command", cmd.String())
	}

	start := time.Now()
	c := exec.CommandContext(ctx, cmd.Cmd, cmd.Args...)
	out, err := c.CombinedOutput()
	res := &Result{Output: out, Duration: time.Since(start)}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, cmd.Cmd)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, fmt.Errorf("failed to run command %q: %w", cmd.String(), err)
		}
	}

	if r.Verbose {
		r.logger().Debug("command finished",
			"id", invocationID,
			"exit_code", res.ExitCode,
			"duration", res.Duration,
			"output", string(res.Output))
	}
	return res, nil
}
