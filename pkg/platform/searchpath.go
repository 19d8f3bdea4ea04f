// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExecSearchPathVar is the environment variable holding the executable
// search path on every supported platform.
const ExecSearchPathVar = "PATH"

// LibrarySearchPathVar returns the environment variable that the dynamic
// linker consults for shared libraries on the current platform. On Windows
// DLLs are resolved through PATH, so there is no separate variable.
func LibrarySearchPathVar() string {
	switch runtime.GOOS {
	case Darwin:
		return "DYLD_LIBRARY_PATH"
	case Windows:
		return ExecSearchPathVar
	default:
		return "LD_LIBRARY_PATH"
	}
}

// PrependPathList returns list with dir prepended using the platform's path
// list separator. An empty list yields dir alone; an empty dir returns list
// unchanged. Duplicate leading entries are collapsed so repeated calls are
// idempotent.
func PrependPathList(dir, list string) string {
	if dir == "" {
		return list
	}
	dir = filepath.Clean(dir)
	if list == "" {
		return dir
	}
	sep := string(os.PathListSeparator)
	if list == dir || strings.HasPrefix(list, dir+sep) {
		return list
	}
	return dir + sep + list
}
