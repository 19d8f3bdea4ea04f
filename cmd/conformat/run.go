// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"conformat/internal/backend"
	"conformat/internal/catalog"
	"conformat/internal/config"
	"conformat/internal/container"
	"conformat/internal/executor"
	"conformat/internal/issue"
	"conformat/internal/matrix"
	"conformat/internal/report"
	"conformat/internal/watch"
)

var (
	runDocker     bool
	runWorkers    int
	runTimeout    time.Duration
	runOutput     string
	runOutputFile string
	runWatch      bool

	runCmd = &cobra.Command{
		Use:   "run [filter tokens...]",
		Short: "Execute the conformance matrix",
		Long: `Execute the cross-product of implementations, fixtures, and environments.

Positional tokens narrow the matrix: each token must name a known
implementation, fixture, or environment from the catalog. Tokens of the same
kind are OR-ed, different kinds are AND-ed. No tokens means the full matrix.

The exit code is 0 when every selected combination passes and 1 otherwise;
the table and the summary line carry the details.`,
		Example: `  conformat run
  conformat run kagome
  conformat run substrate gossamer host-api wasmtime
  conformat run --docker --workers 4
  conformat run --output json --output-file report.json`,
		SilenceUsage: true,
		RunE:         runMatrix,
	}
)

func init() {
	runCmd.Flags().BoolVar(&runDocker, "docker", false, "run against container images instead of local adapter binaries")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "simultaneous runs (default: CPU count, capped)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-run time bound (default 10m)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "export format: json or yaml")
	runCmd.Flags().StringVar(&runOutputFile, "output-file", "", "write the export to a file instead of stdout")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "re-run the matrix when adapter binaries change (local backend only)")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load(config.LoadOptions{Path: cfgFile})
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.ConfigLoadFailedId)
		return &ExitError{Code: 2, Err: err}
	}
	cfg.Verbose = verbose
	cfg.Docker = runDocker
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = runTimeout
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	if runOutput != "" && runOutput != "json" && runOutput != "yaml" {
		return &ExitError{Code: 2, Err: fmt.Errorf("unknown output format %q (want json or yaml)", runOutput)}
	}
	if runWatch && cfg.Docker {
		return &ExitError{Code: 2, Err: fmt.Errorf("--watch monitors local adapter binaries and cannot be combined with --docker")}
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.CatalogLoadFailedId)
		return &ExitError{Code: 2, Err: err}
	}

	// Classify every positional token before anything runs: an unknown
	// token fails the whole invocation, it never shrinks the matrix.
	for _, tok := range args {
		kind, ok := cat.ClassifyToken(tok)
		if !ok {
			fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+fmt.Sprintf("unknown filter token %q", tok))
			fmt.Fprintln(stderr, cmd.UsageString())
			renderIssue(stderr, issue.UnknownFilterId)
			return &ExitError{Code: 2, Err: fmt.Errorf("unknown filter token %q", tok)}
		}
		switch kind {
		case catalog.KindImplementation:
			cfg.Implementations = append(cfg.Implementations, tok)
		case catalog.KindFixture:
			cfg.Fixtures = append(cfg.Fixtures, tok)
		case catalog.KindEnvironment:
			cfg.Environments = append(cfg.Environments, tok)
		}
	}

	resolved, err := cfg.Resolve(cat)
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.UnknownFilterId)
		return &ExitError{Code: 2, Err: err}
	}
	descs := matrix.Build(resolved)

	b, err := selectBackend(cfg)
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.ContainerEngineNotFoundId)
		return &ExitError{Code: 1, Err: err}
	}

	hint := issue.AdapterNotFoundId
	if cfg.Docker {
		hint = issue.ImageNotFoundId
	}
	preflight(b, descs, hint, stderr)

	logger := log.NewWithOptions(stderr, log.Options{ReportTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	exec := executor.New(b, executor.Options{
		Workers: cfg.Workers,
		Timeout: cfg.Timeout,
		Verbose: cfg.Verbose,
		Logger:  logger,
	})

	ctx := cmd.Context()

	runOnce := func(ctx context.Context) (*report.Report, error) {
		spin := startSpinner(len(descs), cfg.Workers, b.Name())
		results := exec.RunAll(ctx, descs)
		if spin != nil {
			spin.Stop()
		}

		rep := report.New(results)
		rep.Render(cmd.OutOrStdout(), cfg.Verbose)
		warnTimeouts(stderr, rep)
		if err := exportReport(rep, cmd); err != nil {
			return rep, err
		}
		return rep, nil
	}

	if runWatch {
		return runWatchLoop(ctx, cfg, logger, runOnce)
	}

	rep, err := runOnce(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	if code := rep.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// selectBackend picks the run backend from the configuration: container
// engine when --docker is set, local child processes otherwise. The local
// path extends the search paths once, for the whole process.
func selectBackend(cfg config.Config) (backend.Backend, error) {
	if !cfg.Docker {
		if err := backend.SetupSearchPaths(cfg.BinDir, cfg.LibDir); err != nil {
			return nil, err
		}
		return backend.NewLocalBackend(), nil
	}

	var (
		engine container.Engine
		err    error
	)
	if cfg.ContainerEngine == "" {
		engine, err = container.AutoDetectEngine()
	} else {
		engine, err = container.NewEngine(container.EngineType(cfg.ContainerEngine))
	}
	if err != nil {
		return nil, err
	}
	return backend.NewContainerBackend(engine), nil
}

// preflight probes each selected implementation's run artifact once before
// the matrix executes, so missing adapters or images surface with guidance
// up front. Failures are warnings, never fatal: the run still proceeds and
// unstartable combinations land in the report as ERROR rows.
func preflight(b backend.Backend, descs []matrix.Descriptor, hint issue.Id, w io.Writer) {
	probed := make(map[catalog.Implementation]bool, len(descs))
	var failed bool
	for _, desc := range descs {
		if probed[desc.Implementation] {
			continue
		}
		probed[desc.Implementation] = true
		if err := b.Validate(desc); err != nil {
			fmt.Fprintln(w, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
			failed = true
		}
	}
	if failed {
		renderIssue(w, hint)
	}
}

// warnTimeouts renders timeout guidance after a report that recorded
// timed-out runs.
func warnTimeouts(w io.Writer, rep *report.Report) {
	if rep.Counts.Timeout > 0 {
		renderIssue(w, issue.RunTimeoutId)
	}
}

// startSpinner starts a progress spinner when stdout is an interactive
// terminal and the run is not verbose. Returns nil otherwise.
func startSpinner(total, workers int, backendName string) *spinner.Spinner {
	if verbose || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" running %d combinations (%s, %d workers)", total, backendName, workers)
	s.Start()
	return s
}

// exportReport writes the machine-readable report when --output is set.
func exportReport(rep *report.Report, cmd *cobra.Command) error {
	if runOutput == "" {
		return nil
	}

	out := cmd.OutOrStdout()
	if runOutputFile != "" {
		f, err := os.Create(runOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch runOutput {
	case "json":
		return rep.WriteJSON(out)
	default:
		return rep.WriteYAML(out)
	}
}

// runWatchLoop runs the matrix once, then re-runs it whenever adapter
// binaries under the bin dir change. The loop ends on interrupt; watch mode
// always exits 0 on clean cancellation because the terminal already showed
// each iteration's verdict.
func runWatchLoop(ctx context.Context, cfg config.Config, logger *log.Logger, runOnce func(context.Context) (*report.Report, error)) error {
	if _, err := runOnce(ctx); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	w, err := watch.New(watch.Config{
		Dirs:   []string{cfg.BinDir},
		Logger: logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("adapter change detected, re-running matrix", "changed", len(changed))
			_, err := runOnce(ctx)
			return err
		},
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	logger.Info("watching for adapter changes", "dir", cfg.BinDir)
	if err := w.Run(ctx); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
