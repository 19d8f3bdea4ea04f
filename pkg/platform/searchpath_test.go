// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"strings"
	"testing"
)

func TestPrependPathList(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)

	tests := []struct {
		name string
		dir  string
		list string
		want string
	}{
		{
			name: "empty list yields dir alone",
			dir:  "/opt/bin",
			list: "",
			want: "/opt/bin",
		},
		{
			name: "empty dir returns list unchanged",
			dir:  "",
			list: "/usr/bin" + sep + "/bin",
			want: "/usr/bin" + sep + "/bin",
		},
		{
			name: "dir is prepended with separator",
			dir:  "/opt/bin",
			list: "/usr/bin",
			want: "/opt/bin" + sep + "/usr/bin",
		},
		{
			name: "already-leading dir is not duplicated",
			dir:  "/opt/bin",
			list: "/opt/bin" + sep + "/usr/bin",
			want: "/opt/bin" + sep + "/usr/bin",
		},
		{
			name: "list equal to dir is unchanged",
			dir:  "/opt/bin",
			list: "/opt/bin",
			want: "/opt/bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PrependPathList(tt.dir, tt.list)
			if got != tt.want {
				t.Errorf("PrependPathList(%q, %q) = %q, want %q", tt.dir, tt.list, got, tt.want)
			}
		})
	}
}

func TestPrependPathListIdempotent(t *testing.T) {
	t.Parallel()

	once := PrependPathList("/opt/lib", "/usr/lib")
	twice := PrependPathList("/opt/lib", once)
	if once != twice {
		t.Errorf("PrependPathList is not idempotent: %q vs %q", once, twice)
	}
}

func TestLibrarySearchPathVar(t *testing.T) {
	t.Parallel()

	v := LibrarySearchPathVar()
	if v == "" {
		t.Fatal("LibrarySearchPathVar() returned empty string")
	}
	if v != ExecSearchPathVar && !strings.HasSuffix(v, "LIBRARY_PATH") {
		t.Errorf("LibrarySearchPathVar() = %q, want PATH or *LIBRARY_PATH", v)
	}
}
