// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"slices"
	"testing"

	"conformat/internal/catalog"
)

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fixture  catalog.Fixture
		env      string
		expected []string
	}{
		{
			name:     "single word",
			fixture:  catalog.Fixture{Name: "scale-codec", Args: "scale-codec"},
			expected: []string{"scale-codec"},
		},
		{
			name:     "multiple words",
			fixture:  catalog.Fixture{Name: "state-trie", Args: "state-trie --state-version 1"},
			expected: []string{"state-trie", "--state-version", "1"},
		},
		{
			name: "environment placeholder expands",
			fixture: catalog.Fixture{
				Name:         "host-api",
				Args:         "host-api --environment $CONFORMAT_ENVIRONMENT",
				EnvSensitive: true,
			},
			env:      "wasmtime",
			expected: []string{"host-api", "--environment", "wasmtime"},
		},
		{
			name: "quoted words stay single",
			fixture: catalog.Fixture{
				Name: "genesis",
				Args: `genesis --spec "two words"`,
			},
			expected: []string{"genesis", "--spec", "two words"},
		},
		{
			name: "unknown variables expand empty",
			fixture: catalog.Fixture{
				Name: "scale-codec",
				Args: "scale-codec $NOT_A_HARNESS_VAR",
			},
			expected: []string{"scale-codec"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildArgs(tt.fixture, tt.env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildArgs_MalformedTemplate(t *testing.T) {
	t.Parallel()
	fix := catalog.Fixture{Name: "broken", Args: `genesis --spec "unterminated`}
	if _, err := BuildArgs(fix, ""); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestBuildArgs_HermeticAgainstProcessEnv(t *testing.T) {
	t.Setenv("NOT_A_HARNESS_VAR", "leaked")

	fix := catalog.Fixture{Name: "scale-codec", Args: "scale-codec $NOT_A_HARNESS_VAR"}
	got, err := BuildArgs(fix, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"scale-codec"}) {
		t.Errorf("process environment leaked into args: %v", got)
	}
}
