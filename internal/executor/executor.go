// SPDX-License-Identifier: MPL-2.0

// Package executor drains a descriptor sequence through a bounded worker
// pool and classifies every outcome.
//
// The pool is failure-containing: one run failing, erroring, or timing out
// never aborts its siblings. Results land at their descriptor's matrix index,
// so the report order is independent of completion order.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"conformat/internal/backend"
	"conformat/internal/matrix"
	"conformat/internal/report"
)

// Options configures an Executor.
type Options struct {
	// Workers bounds the number of simultaneous in-flight runs.
	Workers int
	// Timeout bounds each individual run.
	Timeout time.Duration
	// Verbose retains captured output on passing runs too.
	Verbose bool
	// Logger receives per-run debug lines. Defaults to log.Default().
	Logger *log.Logger
}

// Executor runs matrix descriptors through a backend.
type Executor struct {
	backend backend.Backend
	opts    Options
}

// New creates an Executor over b.
func New(b backend.Backend, opts Options) *Executor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Executor{backend: b, opts: opts}
}

// RunAll executes every descriptor and returns one classified result per
// descriptor, in matrix order. Cancelling ctx stops in-flight children and
// records the not-yet-started remainder as errored, so the returned slice
// always covers the full matrix.
func (e *Executor) RunAll(ctx context.Context, descs []matrix.Descriptor) []report.Result {
	results := make([]report.Result, len(descs))

	g := new(errgroup.Group)
	g.SetLimit(e.opts.Workers)

	for _, desc := range descs {
		g.Go(func() error {
			// One writer per slot; no lock needed.
			results[desc.Index] = e.runOne(ctx, desc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runOne executes a single descriptor under the per-run timeout and maps the
// backend outcome onto a status. The mapping is total.
func (e *Executor) runOne(ctx context.Context, desc matrix.Descriptor) report.Result {
	res := report.Result{
		Implementation: desc.Implementation.Name,
		Fixture:        desc.Fixture.Name,
		Environment:    desc.Environment,
	}

	if ctx.Err() != nil {
		res.Status = report.StatusError
		res.Detail = "canceled before start"
		return res
	}

	runCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	e.opts.Logger.Debug("starting run", "id", desc.ID(), "backend", e.backend.Name())
	out := e.backend.Run(runCtx, desc)

	res.ExitCode = out.ExitCode
	res.Duration = out.Duration

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		res.Status = report.StatusError
		res.Detail = "canceled"
	case out.StartErr != nil:
		res.Status = report.StatusError
		res.Detail = out.StartErr.Error()
	case out.TimedOut:
		res.Status = report.StatusTimeout
	case out.ExitCode == 0:
		res.Status = report.StatusPass
	default:
		res.Status = report.StatusFail
	}

	if res.Status != report.StatusPass || e.opts.Verbose {
		res.Stdout = out.Stdout
		res.Stderr = out.Stderr
	}

	e.opts.Logger.Debug("finished run",
		"id", desc.ID(), "status", res.Status, "exitCode", res.ExitCode, "duration", res.Duration)
	return res
}
