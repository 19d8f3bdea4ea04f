// SPDX-License-Identifier: MPL-2.0

// Package report aggregates run results into the harness's single source of
// truth for "did the matrix pass": a deterministic table, a summary line, a
// machine-readable export, and the process exit code.
package report

import (
	"time"

	"github.com/google/uuid"
)

// Status classifies one run result. The classification is total: every
// descriptor handed to the executor ends up with exactly one of these.
type Status string

const (
	// StatusPass means the run artifact exited 0.
	StatusPass Status = "PASS"
	// StatusFail means the run artifact ran to completion and exited non-zero.
	StatusFail Status = "FAIL"
	// StatusError means the run artifact could not be located or launched.
	StatusError Status = "ERROR"
	// StatusTimeout means the run exceeded its time bound and was reclaimed.
	StatusTimeout Status = "TIMEOUT"
)

// Result is the classified outcome of one matrix descriptor.
type Result struct {
	Implementation string        `json:"implementation" yaml:"implementation"`
	Fixture        string        `json:"fixture" yaml:"fixture"`
	Environment    string        `json:"environment,omitempty" yaml:"environment,omitempty"`
	Status         Status        `json:"status" yaml:"status"`
	ExitCode       int           `json:"exitCode" yaml:"exitCode"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	// Stdout and Stderr are retained on non-Pass results (and on Pass when
	// the run was verbose).
	Stdout string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	// Detail carries the start-error message for StatusError results.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ID renders the result's descriptor identity.
func (r Result) ID() string {
	id := r.Implementation + "/" + r.Fixture
	if r.Environment != "" {
		id += "@" + r.Environment
	}
	return id
}

// Counts tallies results by status.
type Counts struct {
	Pass    int `json:"pass" yaml:"pass"`
	Fail    int `json:"fail" yaml:"fail"`
	Error   int `json:"error" yaml:"error"`
	Timeout int `json:"timeout" yaml:"timeout"`
}

// Total returns the number of counted results.
func (c Counts) Total() int {
	return c.Pass + c.Fail + c.Error + c.Timeout
}

// Report is the aggregated outcome of one matrix execution. Results keep the
// matrix order they were produced in.
type Report struct {
	// RunID uniquely identifies this harness invocation in exported artifacts.
	RunID   string   `json:"runId" yaml:"runId"`
	Results []Result `json:"results" yaml:"results"`
	Counts  Counts   `json:"counts" yaml:"counts"`
	// Verdict is "pass" iff every result passed.
	Verdict string `json:"verdict" yaml:"verdict"`
}

// New builds a Report over results, stamping a fresh run identifier.
func New(results []Result) *Report {
	r := &Report{
		RunID:   uuid.NewString(),
		Results: results,
	}
	for _, res := range results {
		switch res.Status {
		case StatusPass:
			r.Counts.Pass++
		case StatusFail:
			r.Counts.Fail++
		case StatusError:
			r.Counts.Error++
		case StatusTimeout:
			r.Counts.Timeout++
		}
	}
	r.Verdict = "fail"
	if r.Counts.Pass == r.Counts.Total() {
		r.Verdict = "pass"
	}
	return r
}

// ExitCode maps the report to the process exit code: 0 iff every result
// passed (an empty matrix passes vacuously), 1 otherwise. Anything more
// granular belongs in the table, not the exit code.
func (r *Report) ExitCode() int {
	if r.Verdict == "pass" {
		return 0
	}
	return 1
}
