// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"fmt"

	"mvdan.cc/sh/v3/shell"

	"conformat/internal/catalog"
)

// BuildArgs splits the fixture's argument template into argv words using
// POSIX shell word splitting. $CONFORMAT_ENVIRONMENT expands to env; any
// other variable reference expands to the empty string so templates stay
// hermetic regardless of the caller's environment.
func BuildArgs(fix catalog.Fixture, env string) ([]string, error) {
	fields, err := shell.Fields(fix.Args, func(name string) string {
		if name == EnvironmentVar {
			return env
		}
		return ""
	})
	if err != nil {
		return nil, fmt.Errorf("failed to split args template for fixture %s: %w", fix.Name, err)
	}
	return fields, nil
}
