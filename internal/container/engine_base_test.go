// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"slices"
	"testing"
)

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	tests := []struct {
		name     string
		opts     RunOptions
		expected []string
	}{
		{
			name: "minimal run",
			opts: RunOptions{
				Image:   "conformat/substrate-adapter",
				Command: []string{"scale-codec"},
			},
			expected: []string{"run", "conformat/substrate-adapter", "scale-codec"},
		},
		{
			name: "run with removal and name",
			opts: RunOptions{
				Image:   "conformat/kagome-adapter",
				Command: []string{"host-api", "--runtime", "wasmtime"},
				Name:    "conformat-a1b2c3d4",
				Remove:  true,
			},
			expected: []string{
				"run", "--rm", "--name", "conformat-a1b2c3d4",
				"conformat/kagome-adapter", "host-api", "--runtime", "wasmtime",
			},
		},
		{
			name: "env variables are sorted by key",
			opts: RunOptions{
				Image:   "conformat/gossamer-adapter",
				Command: []string{"state-trie"},
				Env: map[string]string{
					"ZETA":  "z",
					"ALPHA": "a",
					"MID":   "m",
				},
			},
			expected: []string{
				"run",
				"-e", "ALPHA=a",
				"-e", "MID=m",
				"-e", "ZETA=z",
				"conformat/gossamer-adapter", "state-trie",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := engine.RunArgs(tt.opts)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("RunArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBaseCLIEngine_RunArgsTransformer(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/podman",
		WithRunArgsTransformer(func(args []string) []string {
			return append([]string{args[0], "--injected"}, args[1:]...)
		}))

	got := engine.RunArgs(RunOptions{Image: "img", Command: []string{"cmd"}})
	want := []string{"run", "--injected", "img", "cmd"}
	if !slices.Equal(got, want) {
		t.Errorf("RunArgs() = %v, want %v", got, want)
	}
}

func TestBaseCLIEngine_RemoveArgs(t *testing.T) {
	t.Parallel()
	engine := NewBaseCLIEngine("/usr/bin/docker")

	if got := engine.RemoveArgs("c1", false); !slices.Equal(got, []string{"rm", "c1"}) {
		t.Errorf("RemoveArgs(c1, false) = %v", got)
	}
	if got := engine.RemoveArgs("c1", true); !slices.Equal(got, []string{"rm", "-f", "c1"}) {
		t.Errorf("RemoveArgs(c1, true) = %v", got)
	}
}

func TestBaseCLIEngine_RunContainer_Success(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.Stdout = "all checks passed"
	engine := NewBaseCLIEngine("docker", WithExecCommand(recorder.CommandFunc(t)))

	var stdout bytes.Buffer
	result, err := engine.RunContainer(context.Background(), RunOptions{
		Image:   "conformat/substrate-adapter",
		Command: []string{"scale-codec"},
		Name:    "conformat-test",
		Remove:  true,
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("expected nil launch error, got %v", result.Error)
	}
	if stdout.String() != "all checks passed" {
		t.Errorf("expected container stdout to be captured, got %q", stdout.String())
	}

	recorder.AssertInvocationCount(t, 1)
	recorder.AssertFirstArg(t, "run")
	if !recorder.HasArg("--rm") {
		t.Error("expected --rm in run args")
	}
	if !recorder.HasArgPair("--name", "conformat-test") {
		t.Error("expected --name conformat-test in run args")
	}
}

func TestBaseCLIEngine_RunContainer_NonZeroExit(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.ExitCode = 3
	engine := NewBaseCLIEngine("docker", WithExecCommand(recorder.CommandFunc(t)))

	result, err := engine.RunContainer(context.Background(), RunOptions{
		Image:   "conformat/kagome-adapter",
		Command: []string{"host-api"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("non-zero exit is not a launch failure, got error: %v", result.Error)
	}
}

func TestBaseCLIEngine_RunContainer_LaunchFailure(t *testing.T) {
	// A bogus binary path makes exec fail before the child ever runs.
	engine := NewBaseCLIEngine("/nonexistent/engine/binary")

	result, err := engine.RunContainer(context.Background(), RunOptions{
		Image:   "conformat/substrate-adapter",
		Command: []string{"scale-codec"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Error == nil {
		t.Error("expected launch error for missing engine binary")
	}
	if result.ExitCode == 0 {
		t.Error("expected non-zero exit code on launch failure")
	}
}

func TestBaseCLIEngine_RunCommandWithOutput(t *testing.T) {
	recorder := NewMockCommandRecorder()
	recorder.Stdout = "  27.1.1\n"
	engine := NewBaseCLIEngine("docker", WithExecCommand(recorder.CommandFunc(t)))

	out, err := engine.RunCommandWithOutput(context.Background(), "version", "--format", "{{.Server.Version}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "27.1.1" {
		t.Errorf("expected trimmed output %q, got %q", "27.1.1", out)
	}
	recorder.AssertFirstArg(t, "version")
}
