// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for conformat.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"conformat/internal/catalog"
	"conformat/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "conformat",
		Short: "A conformance matrix runner for host-runtime implementations",
		Long: TitleStyle.Render("conformat") + SubtitleStyle.Render(" - a conformance matrix runner") + `

conformat runs a cross-product of host-runtime implementations, test
fixtures, and host-API environments as external processes - either locally
built adapter binaries or container images - and aggregates every outcome
into a single deterministic report.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Build or pull the adapter artifacts for the implementations under test
  2. Run the full matrix with: conformat run
  3. Narrow it down with filter tokens: conformat run kagome host-api wasmtime

` + SubtitleStyle.Render("Examples:") + `
  conformat run                   Run every implementation x fixture combination
  conformat run substrate         Run all fixtures against one implementation
  conformat run --docker          Run against container images instead
  conformat list                  Show everything the catalog knows about`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadCatalog loads the selection catalog: the configured file when one is
// set, the built-in catalog otherwise.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// render their suggestion block; verbose mode adds the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue writes the issue catalog entry for id to w, if one exists.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
