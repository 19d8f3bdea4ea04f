// SPDX-License-Identifier: MPL-2.0

// Package matrix expands a resolved run configuration into the ordered set of
// run descriptors — one per implementation × fixture × environment
// combination, subject to the fixtures' environment applicability.
//
// Build is a pure function: the same resolved configuration always yields the
// same descriptor sequence, so repeated harness invocations over the same
// inputs produce directly comparable reports.
package matrix

import (
	"conformat/internal/catalog"
	"conformat/internal/config"
)

// Descriptor identifies one concrete test invocation.
type Descriptor struct {
	// Index is the descriptor's position in the matrix. The executor tags
	// results with it so the report can restore matrix order regardless of
	// completion order.
	Index int
	// Implementation is the host runtime under test.
	Implementation catalog.Implementation
	// Fixture is the test-suite bundle to run.
	Fixture catalog.Fixture
	// Environment is the host-API execution mode. Empty unless the fixture
	// is environment-sensitive.
	Environment string
}

// ID renders the descriptor as "implementation/fixture" or
// "implementation/fixture@environment".
func (d Descriptor) ID() string {
	id := d.Implementation.Name + "/" + d.Fixture.Name
	if d.Environment != "" {
		id += "@" + d.Environment
	}
	return id
}

// Build expands cfg into the ordered, deduplicated descriptor sequence.
// Ordering is implementation-major, then fixture, then environment, each in
// catalog declaration order (already imposed by config resolution).
// Environment-insensitive fixtures emit exactly one descriptor with an empty
// environment; the environment filter is a no-op for them, never an error.
func Build(cfg config.Resolved) []Descriptor {
	var descs []Descriptor
	for _, impl := range cfg.Implementations {
		for _, fix := range cfg.Fixtures {
			if !fix.EnvSensitive {
				descs = append(descs, Descriptor{
					Index:          len(descs),
					Implementation: impl,
					Fixture:        fix,
				})
				continue
			}
			for _, env := range cfg.Environments {
				descs = append(descs, Descriptor{
					Index:          len(descs),
					Implementation: impl,
					Fixture:        fix,
					Environment:    env.Name,
				})
			}
		}
	}
	return descs
}
