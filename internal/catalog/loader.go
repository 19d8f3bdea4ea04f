// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"os"

	"conformat/internal/issue"
)

// Load reads and validates a catalog file, replacing the built-in catalog
// entirely. The file must satisfy the embedded schema.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read selection catalog").
			WithResource(path).
			WithSuggestion("Check that the path exists and is readable").
			Wrap(err).
			Build()
	}
	return Parse(string(data), path)
}
