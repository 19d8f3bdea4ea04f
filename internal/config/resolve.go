// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"conformat/internal/catalog"
	"conformat/internal/issue"
)

// ErrUnknownFilter is the sentinel wrapped by filter-validation failures so
// the CLI layer can detect them with errors.Is and print usage.
var ErrUnknownFilter = errors.New("unknown filter value")

// Resolved is a Config whose filter sets have been resolved against a
// catalog: empty sets expanded to "all known values", every name validated,
// duplicates collapsed, and catalog declaration order imposed. Resolution
// happens exactly once, before the matrix is built.
type Resolved struct {
	Config

	Implementations []catalog.Implementation
	Fixtures        []catalog.Fixture
	Environments    []catalog.Environment
}

// Resolve validates the Config's filter sets against cat and expands the
// defaulting behavior. Unknown names fail with ErrUnknownFilter before any
// descriptor is built.
func (c Config) Resolve(cat *catalog.Catalog) (Resolved, error) {
	res := Resolved{Config: c}

	selected, err := selectNames(c.Implementations, "implementation")
	if err != nil {
		return Resolved{}, err
	}
	for _, impl := range cat.Implementations() {
		if selected == nil || selected[impl.Name] {
			res.Implementations = append(res.Implementations, impl)
			delete(selected, impl.Name)
		}
	}
	if err := checkLeftover(selected, "implementation"); err != nil {
		return Resolved{}, err
	}

	selected, err = selectNames(c.Fixtures, "fixture")
	if err != nil {
		return Resolved{}, err
	}
	for _, fix := range cat.Fixtures() {
		if selected == nil || selected[fix.Name] {
			res.Fixtures = append(res.Fixtures, fix)
			delete(selected, fix.Name)
		}
	}
	if err := checkLeftover(selected, "fixture"); err != nil {
		return Resolved{}, err
	}

	selected, err = selectNames(c.Environments, "environment")
	if err != nil {
		return Resolved{}, err
	}
	for _, env := range cat.Environments() {
		if selected == nil || selected[env.Name] {
			res.Environments = append(res.Environments, env)
			delete(selected, env.Name)
		}
	}
	if err := checkLeftover(selected, "environment"); err != nil {
		return Resolved{}, err
	}

	return res, nil
}

// selectNames turns a filter slice into a set, collapsing duplicates.
// A nil return means "no filter: select everything".
func selectNames(names []string, kind string) (map[string]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, invalidFilter(kind, name)
		}
		set[name] = true
	}
	return set, nil
}

// checkLeftover reports filter names that matched nothing in the catalog.
func checkLeftover(selected map[string]bool, kind string) error {
	for name := range selected {
		return invalidFilter(kind, name)
	}
	return nil
}

func invalidFilter(kind, name string) error {
	return issue.NewErrorContext().
		WithOperation(fmt.Sprintf("resolve %s filter", kind)).
		WithResource(name).
		WithSuggestion("Run 'conformat list' to see the known catalog entries").
		Wrap(fmt.Errorf("%w: %q is not a known %s", ErrUnknownFilter, name, kind)).
		Build()
}
