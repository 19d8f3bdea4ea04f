// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the OS-specific details the harness depends on:
// runtime.GOOS name constants and the names of the executable and
// shared-library search-path environment variables on each platform.
package platform
