// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGetReturnsEveryDeclaredIssue(t *testing.T) {
	t.Parallel()

	ids := []Id{
		UnknownFilterId,
		CatalogLoadFailedId,
		ConfigLoadFailedId,
		AdapterNotFoundId,
		ContainerEngineNotFoundId,
		ImageNotFoundId,
		RunTimeoutId,
	}
	for _, id := range ids {
		if Get(id) == nil {
			t.Errorf("Get(%d) = nil, want a catalog entry", id)
		}
	}
}

func TestGetUnknownIdReturnsNil(t *testing.T) {
	t.Parallel()

	if got := Get(Id(9999)); got != nil {
		t.Errorf("Get(9999) = %v, want nil", got)
	}
}

func TestValuesMatchesCatalogSize(t *testing.T) {
	t.Parallel()

	vals := Values()
	if len(vals) != 7 {
		t.Errorf("Values() returned %d issues, want 7", len(vals))
	}
}

func TestIssueRenderIncludesMessage(t *testing.T) {
	t.Parallel()

	// Stub the renderer so the test does not depend on terminal detection.
	orig := render
	render = func(in, _ string) (string, error) { return in, nil }
	defer func() { render = orig }()

	out, err := Get(UnknownFilterId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "conformat list") {
		t.Errorf("Render() output missing remediation text:\n%s", out)
	}
}
