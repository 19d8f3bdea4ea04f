// SPDX-License-Identifier: MPL-2.0

// Package backend runs a single matrix descriptor as an external process and
// reports what happened.
//
// Two backends share one Outcome shape: the local backend spawns adapter
// binaries resolved on the search path, the container backend runs the
// implementation's image through a container engine. A backend never decides
// pass or fail; it only reports exit code, captured output, duration, and
// whether the run timed out or failed to start. Classification into statuses
// is the executor's job.
package backend
