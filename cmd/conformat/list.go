// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"conformat/internal/config"
	"conformat/internal/issue"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the catalog: implementations, fixtures, and environments",
	Long: `Show everything the selection catalog knows about.

Any name printed here is a valid filter token for 'conformat run'. The
listing order is the catalog declaration order, which is also the order of
rows in the run report.`,
	SilenceUsage: true,
	RunE:         listCatalog,
}

func listCatalog(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load(config.LoadOptions{Path: cfgFile})
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.ConfigLoadFailedId)
		return &ExitError{Code: 2, Err: err}
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(stderr, issue.CatalogLoadFailedId)
		return &ExitError{Code: 2, Err: err}
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, TitleStyle.Render("Implementations"))
	implTable := table.NewWriter()
	implTable.SetOutputMirror(out)
	implTable.SetStyle(table.StyleRounded)
	implTable.AppendHeader(table.Row{"NAME", "ADAPTER", "IMAGE"})
	for _, impl := range cat.Implementations() {
		implTable.AppendRow(table.Row{impl.Name, impl.Adapter, impl.Image})
	}
	implTable.Render()

	fmt.Fprintln(out)
	fmt.Fprintln(out, TitleStyle.Render("Fixtures"))
	fixTable := table.NewWriter()
	fixTable.SetOutputMirror(out)
	fixTable.SetStyle(table.StyleRounded)
	fixTable.AppendHeader(table.Row{"NAME", "ARGS", "ENV-SENSITIVE"})
	for _, fix := range cat.Fixtures() {
		sensitive := "no"
		if fix.EnvSensitive {
			sensitive = "yes"
		}
		fixTable.AppendRow(table.Row{fix.Name, fix.Args, sensitive})
	}
	fixTable.Render()

	fmt.Fprintln(out)
	fmt.Fprintln(out, TitleStyle.Render("Environments"))
	envTable := table.NewWriter()
	envTable.SetOutputMirror(out)
	envTable.SetStyle(table.StyleRounded)
	envTable.AppendHeader(table.Row{"NAME"})
	for _, env := range cat.Environments() {
		envTable.AppendRow(table.Row{env.Name})
	}
	envTable.Render()

	return nil
}
