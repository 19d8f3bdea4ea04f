// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes the result table and the summary line to w. Rows appear in
// matrix order. When verbose is set, retained output of non-passing runs is
// printed after the table.
func (r *Report) Render(w io.Writer, verbose bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"IMPLEMENTATION", "FIXTURE", "ENVIRONMENT", "STATUS", "DURATION"})
	for _, res := range r.Results {
		env := res.Environment
		if env == "" {
			env = "-"
		}
		t.AppendRow(table.Row{
			res.Implementation,
			res.Fixture,
			env,
			colorStatus(res.Status),
			res.Duration.Round(time.Millisecond).String(),
		})
	}
	t.Render()

	fmt.Fprintln(w, r.Summary())

	if verbose {
		for _, res := range r.Results {
			if res.Status == StatusPass {
				continue
			}
			fmt.Fprintf(w, "\n--- %s (%s)\n", res.ID(), res.Status)
			if res.Detail != "" {
				fmt.Fprintln(w, res.Detail)
			}
			if out := strings.TrimSpace(res.Stdout); out != "" {
				fmt.Fprintln(w, out)
			}
			if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
				fmt.Fprintln(w, errOut)
			}
		}
	}
}

// Summary renders the one-line tally.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d passed, %d failed, %d errored, %d timed out",
		r.Counts.Pass, r.Counts.Fail, r.Counts.Error, r.Counts.Timeout)
}

func colorStatus(s Status) string {
	switch s {
	case StatusPass:
		return text.FgGreen.Sprint(s)
	case StatusFail:
		return text.FgRed.Sprint(s)
	case StatusError:
		return text.FgHiRed.Sprint(s)
	case StatusTimeout:
		return text.FgYellow.Sprint(s)
	default:
		return string(s)
	}
}
