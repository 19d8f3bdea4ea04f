// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container engines
// (Docker/Podman).
//
// The harness's container backend runs implementation images through the
// Engine interface; both supported engines drive the respective CLI binary so
// no daemon SDK dependency is needed, and either can stand in for the other
// when only one is installed.
package container
