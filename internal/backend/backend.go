// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"time"

	"conformat/internal/matrix"
)

// Backend executes matrix descriptors.
type Backend interface {
	// Name returns the backend name.
	Name() string
	// Available checks whether the backend can run anything on this system.
	Available() bool
	// Validate checks whether a specific descriptor could run, without
	// running it. Used for early diagnostics; Run performs the same
	// resolution again and reports failures through Outcome.StartErr.
	Validate(desc matrix.Descriptor) error
	// Run executes the descriptor and blocks until it finishes, the ctx
	// deadline expires, or ctx is canceled. Run never returns an error:
	// everything that can go wrong is expressed in the Outcome.
	Run(ctx context.Context, desc matrix.Descriptor) Outcome
}

// Outcome is the raw result of one run, common to all backends.
type Outcome struct {
	// ExitCode is the child's exit code. Meaningless when StartErr is set.
	ExitCode int
	// Stdout and Stderr hold the captured output.
	Stdout string
	Stderr string
	// Duration is the wall-clock time from launch to reclaim.
	Duration time.Duration
	// TimedOut reports that the ctx deadline expired and the child was
	// forcibly reclaimed.
	TimedOut bool
	// StartErr is set when the run artifact could not be located or
	// launched. It is mutually exclusive with a meaningful ExitCode.
	StartErr error
}

// EnvironmentVar is the environment variable carrying the selected host-API
// execution mode into adapter processes. Fixture argument templates may
// reference it as a placeholder.
const EnvironmentVar = "CONFORMAT_ENVIRONMENT"
