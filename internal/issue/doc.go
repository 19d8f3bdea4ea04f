// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// It has two halves: ActionableError, a structured error carrying the failed
// operation, the resource involved, and remediation suggestions; and a catalog
// of Markdown help texts rendered in the terminal when the harness hits a
// well-known failure mode (unknown filter token, missing adapter binary,
// missing container engine, ...).
package issue
