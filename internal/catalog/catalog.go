// SPDX-License-Identifier: MPL-2.0

// Package catalog defines the closed sets of implementations, fixtures, and
// environments the harness knows about.
//
// The built-in catalog is embedded as a CUE document and validated against an
// embedded schema; an alternative catalog file can be loaded the same way.
// Declaration order is preserved because it fixes the deterministic ordering
// of the run matrix. Environment sensitivity is an explicit per-fixture flag,
// never inferred from naming conventions.
package catalog

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"conformat/internal/issue"
)

//go:embed schema.cue
var schemaSource string

//go:embed catalog.cue
var builtinSource string

// Token kinds returned by ClassifyToken.
const (
	KindImplementation Kind = "implementation"
	KindFixture        Kind = "fixture"
	KindEnvironment    Kind = "environment"
)

type (
	// Kind identifies which catalog set a filter token belongs to.
	Kind string

	// Implementation is a host-runtime build under test.
	Implementation struct {
		// Name is the identifier used in CLI filter tokens.
		Name string `json:"name"`
		// Adapter is the executable the local backend resolves on the search path.
		Adapter string `json:"adapter"`
		// Image is the container image the container backend runs.
		Image string `json:"image"`
	}

	// Fixture is a named test-suite bundle exercised against an implementation.
	Fixture struct {
		// Name is the identifier used in CLI filter tokens.
		Name string `json:"name"`
		// Args is the adapter argument template, shell-word-split at run time.
		Args string `json:"args"`
		// EnvSensitive marks fixtures that vary by host-API execution mode.
		EnvSensitive bool `json:"envSensitive"`
	}

	// Environment is a host-API execution-mode variant. It only applies to
	// fixtures declaring EnvSensitive.
	Environment struct {
		Name string `json:"name"`
	}

	// Catalog holds the ordered catalog sets plus name lookup indexes.
	// A Catalog is immutable after construction and safe for concurrent use.
	Catalog struct {
		implementations []Implementation
		fixtures        []Fixture
		environments    []Environment

		implIndex map[string]int
		fixIndex  map[string]int
		envIndex  map[string]int
	}

	// rawCatalog mirrors the CUE document layout for decoding.
	rawCatalog struct {
		Implementations []Implementation `json:"implementations"`
		Fixtures        []Fixture        `json:"fixtures"`
		Environments    []Environment    `json:"environments"`
	}
)

// Default returns the built-in catalog. The embedded document is validated at
// process start; a broken build is a programming error, hence the panic.
func Default() *Catalog {
	cat, err := parse(builtinSource, "catalog.cue")
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return cat
}

// Parse validates source against the catalog schema and builds a Catalog.
// filename is used in error positions only.
func Parse(source, filename string) (*Catalog, error) {
	cat, err := parse(source, filename)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load selection catalog").
			WithResource(filename).
			WithSuggestion("Validate the file against the catalog schema with 'cue vet'").
			Wrap(err).
			Build()
	}
	return cat, nil
}

func parse(source, filename string) (*Catalog, error) {
	cuectx := cuecontext.New()

	schema := cuectx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	doc := cuectx.CompileString(source, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog: %w", err)
	}

	merged := schema.Unify(doc)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	var raw rawCatalog
	if err := merged.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return newCatalog(raw)
}

func newCatalog(raw rawCatalog) (*Catalog, error) {
	if len(raw.Implementations) == 0 {
		return nil, fmt.Errorf("catalog declares no implementations")
	}
	if len(raw.Fixtures) == 0 {
		return nil, fmt.Errorf("catalog declares no fixtures")
	}

	cat := &Catalog{
		implementations: raw.Implementations,
		fixtures:        raw.Fixtures,
		environments:    raw.Environments,
		implIndex:       make(map[string]int, len(raw.Implementations)),
		fixIndex:        make(map[string]int, len(raw.Fixtures)),
		envIndex:        make(map[string]int, len(raw.Environments)),
	}

	for i, impl := range cat.implementations {
		if _, dup := cat.implIndex[impl.Name]; dup {
			return nil, fmt.Errorf("duplicate implementation %q", impl.Name)
		}
		cat.implIndex[impl.Name] = i
	}
	for i, fix := range cat.fixtures {
		if _, dup := cat.fixIndex[fix.Name]; dup {
			return nil, fmt.Errorf("duplicate fixture %q", fix.Name)
		}
		if _, clash := cat.implIndex[fix.Name]; clash {
			return nil, fmt.Errorf("fixture %q collides with an implementation name", fix.Name)
		}
		cat.fixIndex[fix.Name] = i
	}
	for i, env := range cat.environments {
		if _, dup := cat.envIndex[env.Name]; dup {
			return nil, fmt.Errorf("duplicate environment %q", env.Name)
		}
		if _, clash := cat.implIndex[env.Name]; clash {
			return nil, fmt.Errorf("environment %q collides with an implementation name", env.Name)
		}
		if _, clash := cat.fixIndex[env.Name]; clash {
			return nil, fmt.Errorf("environment %q collides with a fixture name", env.Name)
		}
		cat.envIndex[env.Name] = i
	}

	envSensitive := false
	for _, fix := range cat.fixtures {
		if fix.EnvSensitive {
			envSensitive = true
			break
		}
	}
	if envSensitive && len(cat.environments) == 0 {
		return nil, fmt.Errorf("catalog declares environment-sensitive fixtures but no environments")
	}

	return cat, nil
}

// Implementations returns the implementations in declaration order.
func (c *Catalog) Implementations() []Implementation {
	out := make([]Implementation, len(c.implementations))
	copy(out, c.implementations)
	return out
}

// Fixtures returns the fixtures in declaration order.
func (c *Catalog) Fixtures() []Fixture {
	out := make([]Fixture, len(c.fixtures))
	copy(out, c.fixtures)
	return out
}

// Environments returns the environments in declaration order.
func (c *Catalog) Environments() []Environment {
	out := make([]Environment, len(c.environments))
	copy(out, c.environments)
	return out
}

// LookupImplementation returns the implementation named name.
func (c *Catalog) LookupImplementation(name string) (Implementation, bool) {
	i, ok := c.implIndex[name]
	if !ok {
		return Implementation{}, false
	}
	return c.implementations[i], true
}

// LookupFixture returns the fixture named name.
func (c *Catalog) LookupFixture(name string) (Fixture, bool) {
	i, ok := c.fixIndex[name]
	if !ok {
		return Fixture{}, false
	}
	return c.fixtures[i], true
}

// LookupEnvironment returns the environment named name.
func (c *Catalog) LookupEnvironment(name string) (Environment, bool) {
	i, ok := c.envIndex[name]
	if !ok {
		return Environment{}, false
	}
	return c.environments[i], true
}

// ClassifyToken reports which catalog set a CLI filter token belongs to.
// Catalog construction rejects cross-set name collisions, so the answer is
// unambiguous.
func (c *Catalog) ClassifyToken(token string) (Kind, bool) {
	if _, ok := c.implIndex[token]; ok {
		return KindImplementation, true
	}
	if _, ok := c.fixIndex[token]; ok {
		return KindFixture, true
	}
	if _, ok := c.envIndex[token]; ok {
		return KindEnvironment, true
	}
	return "", false
}
