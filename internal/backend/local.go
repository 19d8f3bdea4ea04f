// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"conformat/internal/issue"
	"conformat/internal/matrix"
)

// LocalBackend runs adapter binaries as direct child processes. Adapters are
// resolved via the executable search path, which SetupSearchPaths extends
// with the configured bin dir before the first run.
type LocalBackend struct{}

// NewLocalBackend creates a local backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{}
}

// Name returns the backend name.
func (b *LocalBackend) Name() string {
	return "local"
}

// Available reports whether the backend can run at all. Spawning child
// processes needs no external tooling.
func (b *LocalBackend) Available() bool {
	return true
}

// Validate checks that the descriptor's adapter binary resolves on the
// search path.
func (b *LocalBackend) Validate(desc matrix.Descriptor) error {
	if _, err := exec.LookPath(desc.Implementation.Adapter); err != nil {
		return adapterNotFound(desc.Implementation.Adapter, err)
	}
	return nil
}

// Run executes the descriptor's adapter and captures its output. The ctx
// deadline bounds the child; on expiry the child is killed and the outcome
// is marked TimedOut.
func (b *LocalBackend) Run(ctx context.Context, desc matrix.Descriptor) Outcome {
	start := time.Now()

	bin, err := exec.LookPath(desc.Implementation.Adapter)
	if err != nil {
		return Outcome{
			StartErr: adapterNotFound(desc.Implementation.Adapter, err),
			Duration: time.Since(start),
		}
	}

	args, err := BuildArgs(desc.Fixture, desc.Environment)
	if err != nil {
		return Outcome{StartErr: err, Duration: time.Since(start)}
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = os.Environ()
	if desc.Environment != "" {
		cmd.Env = append(cmd.Env, EnvironmentVar+"="+desc.Environment)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		return out
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		} else {
			out.ExitCode = 1
			out.StartErr = fmt.Errorf("failed to launch adapter %s: %w", bin, runErr)
		}
	}

	return out
}

func adapterNotFound(adapter string, cause error) error {
	return issue.NewErrorContext().
		WithOperation("resolve adapter binary").
		WithResource(adapter).
		WithSuggestion("Place adapter binaries in the configured bin dir, or run with --docker").
		Wrap(cause).
		Build()
}
