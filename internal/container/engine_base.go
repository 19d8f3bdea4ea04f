// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// RunArgsTransformer modifies run arguments after they're built.
	// Used by Podman to inject rootless-compatibility flags.
	RunArgsTransformer func(args []string) []string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the common implementation for CLI-based
	// container engines: argument assembly and child-process plumbing.
	// DockerEngine and PodmanEngine embed it and differ only in binary
	// path, availability probing, and argument transforms.
	BaseCLIEngine struct {
		binaryPath    string
		execCommand   ExecCommandFunc
		transformArgs RunArgsTransformer
	}
)

// WithExecCommand overrides how child processes are created (tests only).
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithRunArgsTransformer sets a transform applied to assembled run arguments.
func WithRunArgsTransformer(fn RunArgsTransformer) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.transformArgs = fn
	}
}

// NewBaseCLIEngine creates a BaseCLIEngine for the CLI at binaryPath.
// An empty binaryPath yields an engine that reports itself unavailable.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the path to the engine CLI binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// RunArgs builds the argument slice for a 'run' invocation.
// Environment variables are emitted in sorted key order so the assembled
// command line is deterministic.
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}

	args = append(args, opts.Image)
	args = append(args, opts.Command...)

	if e.transformArgs != nil {
		args = e.transformArgs(args)
	}
	return args
}

// RemoveArgs builds the argument slice for removing a container.
func (e *BaseCLIEngine) RemoveArgs(name string, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	return append(args, name)
}

// CreateCommand creates an exec.Cmd for the engine CLI with the given args.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// RunCommandWithOutput runs an engine CLI command and returns its trimmed
// stdout.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", e.binaryPath, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RunCommandStatus runs an engine CLI command, discarding output and
// returning only the status error.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	return e.CreateCommand(ctx, args...).Run()
}

// RunContainer executes a 'run' invocation and classifies the outcome:
// a non-zero container exit lands in RunResult.ExitCode with a nil
// RunResult.Error, while a failure to launch the CLI lands in Error.
func (e *BaseCLIEngine) RunContainer(ctx context.Context, opts RunOptions) (*RunResult, error) {
	cmd := e.CreateCommand(ctx, e.RunArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &RunResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result, nil
}
