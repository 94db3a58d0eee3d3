package link

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds one external command.
const DefaultCommandTimeout = 30 * time.Second

// Runner runs an external command and returns its standard output.
// A command exiting with non-zero status returns its output along with
// an error satisfying IsExitError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// IsExitError indicates the command started but exited with failure.
func IsExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// CommandLine is a command name followed by its arguments.
type CommandLine []string

// String implements fmt.Stringer.
func (c CommandLine) String() string {
	return strings.Join(c, " ")
}

// Run runs the command line with r.
func (c CommandLine) Run(ctx context.Context, r Runner) ([]byte, error) {
	if len(c) == 0 {
		return nil, errors.New("empty command")
	}
	return r.Run(ctx, c[0], c[1:]...)
}
