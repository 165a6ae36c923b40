// Package execx runs external commands behind a small capability interface
// so checks depend on an interface rather than a concrete tool, and tests
// can substitute fakes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Output captures the outcome of one command invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands.
type Runner interface {
	// Run invokes name with args and returns the captured output. A non-zero
	// exit status is reported through Output.ExitCode and the returned error.
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// LocalRunner executes commands on the host.
type LocalRunner struct {
	// Timeout bounds each invocation. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Run implements Runner.
func (r LocalRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	return out, err
}
