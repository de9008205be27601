// Package shelltest provides a scripted shell.Runner for testing code that
// shells out to OS tools.
//
// Usage:
//
//	r := shelltest.NewRunner()
//	r.On("nmcli radio wifi").Respond("enabled\n", 0)
//	// pass 'r' to the backend under test
package shelltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shazow/wifictl/shell"
)

// Response is the scripted outcome for a command.
type Response struct {
	Output   string
	ExitCode int
	Err      error // transport error; when set, Output/ExitCode are ignored
}

// Stub is a partially-built expectation returned by Runner.On.
type Stub struct {
	runner  *Runner
	command string
}

// Respond scripts a successful (or nonzero-exit) response for the command.
func (s *Stub) Respond(output string, exitCode int) *Stub {
	s.runner.mu.Lock()
	defer s.runner.mu.Unlock()
	s.runner.responses[s.command] = append(s.runner.responses[s.command], Response{Output: output, ExitCode: exitCode})
	return s
}

// Fail scripts a transport-level failure for the command.
func (s *Stub) Fail(err error) *Stub {
	s.runner.mu.Lock()
	defer s.runner.mu.Unlock()
	s.runner.responses[s.command] = append(s.runner.responses[s.command], Response{Err: err})
	return s
}

// Runner is a shell.Runner double keyed by the command's String() form.
// Repeated responses for the same command are consumed in order, with the
// last one repeating.
type Runner struct {
	mu        sync.Mutex
	responses map[string][]Response
	last      map[string]Response // last consumed response, repeated when the queue is empty
	calls     []string
}

// NewRunner creates an empty scripted runner. Running a command with no
// scripted response is a transport error, so tests fail loudly on
// unexpected invocations.
func NewRunner() *Runner {
	return &Runner{responses: make(map[string][]Response), last: make(map[string]Response)}
}

// On begins scripting a response for the given command line.
func (r *Runner) On(command string) *Stub {
	return &Stub{runner: r, command: command}
}

// Run implements shell.Runner.
func (r *Runner) Run(ctx context.Context, cmd *shell.Command) (*shell.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := cmd.String()
	r.calls = append(r.calls, key)

	queue := r.responses[key]
	var resp Response
	if len(queue) == 0 {
		var ok bool
		resp, ok = r.last[key]
		if !ok {
			return nil, fmt.Errorf("unexpected command: %s", key)
		}
	} else {
		resp = queue[0]
		r.responses[key] = queue[1:]
		r.last[key] = resp
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &shell.Result{Output: []byte(resp.Output), ExitCode: resp.ExitCode}, nil
}

// Calls returns the command lines run so far, in order.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallCount returns how many commands have been run.
func (r *Runner) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
