// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"conformat/internal/catalog"
)

func implNames(impls []catalog.Implementation) []string {
	out := make([]string, len(impls))
	for i, impl := range impls {
		out[i] = impl.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolveEmptyFiltersSelectEverything(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	res, err := Default().Resolve(cat)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if got := implNames(res.Implementations); !equalStrings(got, []string{"substrate", "kagome", "gossamer"}) {
		t.Errorf("implementations = %v, want all in catalog order", got)
	}
	if len(res.Fixtures) != 4 {
		t.Errorf("fixtures = %d entries, want 4", len(res.Fixtures))
	}
	if len(res.Environments) != 2 {
		t.Errorf("environments = %d entries, want 2", len(res.Environments))
	}
}

func TestResolveImposesCatalogOrder(t *testing.T) {
	t.Parallel()

	cfg := Default()
	// Filter order must not leak into resolution order.
	cfg.Implementations = []string{"gossamer", "substrate"}

	res, err := cfg.Resolve(catalog.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := implNames(res.Implementations); !equalStrings(got, []string{"substrate", "gossamer"}) {
		t.Errorf("implementations = %v, want catalog order [substrate gossamer]", got)
	}
}

func TestResolveCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Fixtures = []string{"genesis", "genesis", "genesis"}

	res, err := cfg.Resolve(catalog.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Fixtures) != 1 {
		t.Errorf("fixtures = %d entries, want 1 (set semantics)", len(res.Fixtures))
	}
}

func TestResolveUnknownName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown implementation", func(c *Config) { c.Implementations = []string{"xyz"} }},
		{"unknown fixture", func(c *Config) { c.Fixtures = []string{"xyz"} }},
		{"unknown environment", func(c *Config) { c.Environments = []string{"xyz"} }},
		{"empty token", func(c *Config) { c.Implementations = []string{""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			_, err := cfg.Resolve(catalog.Default())
			if err == nil {
				t.Fatal("Resolve() should reject unknown filter names")
			}
			if !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("error should wrap ErrUnknownFilter, got %v", err)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Implementations = []string{"kagome"}
	cfg.Fixtures = []string{"host-api"}

	cat := catalog.Default()
	first, err := cfg.Resolve(cat)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	second, err := cfg.Resolve(cat)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if !equalStrings(implNames(first.Implementations), implNames(second.Implementations)) {
		t.Error("Resolve() is not idempotent for implementations")
	}
	if len(first.Fixtures) != len(second.Fixtures) {
		t.Error("Resolve() is not idempotent for fixtures")
	}
}
