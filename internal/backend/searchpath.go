// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"fmt"
	"os"

	"conformat/pkg/platform"
)

// SetupSearchPaths extends the process environment so adapter binaries and
// the shared libraries they link against resolve without the user touching
// their shell profile: binDir is prepended to PATH and libDir to the
// platform's dynamic-linker search path. libDir is created when absent.
//
// The mutation is process-wide and inherited by every child the backends
// spawn; call it once, before the first run.
func SetupSearchPaths(binDir, libDir string) error {
	if binDir != "" {
		merged := platform.PrependPathList(binDir, os.Getenv(platform.ExecSearchPathVar))
		if err := os.Setenv(platform.ExecSearchPathVar, merged); err != nil {
			return fmt.Errorf("failed to extend %s: %w", platform.ExecSearchPathVar, err)
		}
	}

	if libDir != "" {
		if err := os.MkdirAll(libDir, 0o755); err != nil {
			return fmt.Errorf("failed to create library dir %s: %w", libDir, err)
		}
		libVar := platform.LibrarySearchPathVar()
		merged := platform.PrependPathList(libDir, os.Getenv(libVar))
		if err := os.Setenv(libVar, merged); err != nil {
			return fmt.Errorf("failed to extend %s: %w", libVar, err)
		}
	}

	return nil
}
