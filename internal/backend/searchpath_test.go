// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"conformat/pkg/platform"
)

func TestSetupSearchPaths(t *testing.T) {
	binDir := t.TempDir()
	libDir := filepath.Join(t.TempDir(), "lib")

	t.Setenv(platform.ExecSearchPathVar, "/usr/bin")
	t.Setenv(platform.LibrarySearchPathVar(), "")

	if err := SetupSearchPaths(binDir, libDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := os.Getenv(platform.ExecSearchPathVar)
	if !strings.HasPrefix(path, binDir) {
		t.Errorf("expected %s to start with %s, got %s", platform.ExecSearchPathVar, binDir, path)
	}

	libPath := os.Getenv(platform.LibrarySearchPathVar())
	if !strings.HasPrefix(libPath, libDir) {
		t.Errorf("expected library path to start with %s, got %s", libDir, libPath)
	}

	if _, err := os.Stat(libDir); err != nil {
		t.Errorf("expected library dir to be created: %v", err)
	}
}

func TestSetupSearchPaths_Idempotent(t *testing.T) {
	binDir := t.TempDir()

	t.Setenv(platform.ExecSearchPathVar, "/usr/bin")

	if err := SetupSearchPaths(binDir, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := os.Getenv(platform.ExecSearchPathVar)

	if err := SetupSearchPaths(binDir, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv(platform.ExecSearchPathVar); got != first {
		t.Errorf("repeated setup changed PATH: %q vs %q", got, first)
	}
}

func TestSetupSearchPaths_EmptyDirsAreNoops(t *testing.T) {
	t.Setenv(platform.ExecSearchPathVar, "/usr/bin")

	if err := SetupSearchPaths("", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv(platform.ExecSearchPathVar); got != "/usr/bin" {
		t.Errorf("empty bin dir mutated PATH: %q", got)
	}
}
