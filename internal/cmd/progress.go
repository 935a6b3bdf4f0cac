package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/steveyegge/userdoc/internal/project"
	"github.com/steveyegge/userdoc/internal/style"
)

// progressReporter prints one line per project as the pipeline runs. On a
// terminal it also keeps a "[n/total]" counter on stderr.
type progressReporter struct {
	out     io.Writer
	counter io.Writer
	lastLen int
}

func newProgressReporter(out io.Writer) *progressReporter {
	p := &progressReporter{out: out}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		p.counter = os.Stderr
	}
	return p
}

func (p *progressReporter) ProjectStarted(index, total int, proj project.Project) {
	if p.counter != nil {
		status := fmt.Sprintf("[%d/%d] %s", index, total, proj.Name)
		if p.lastLen > len(status) {
			status += strings.Repeat(" ", p.lastLen-len(status))
		}
		p.lastLen = len(status)
		fmt.Fprintf(p.counter, "\r%s", status)
	}
}

func (p *progressReporter) ProjectFinished(res project.Result) {
	if p.counter != nil {
		fmt.Fprintf(p.counter, "\r%s\r", strings.Repeat(" ", p.lastLen))
	}

	name := style.Info.Render(res.Project.Name)
	switch res.Status {
	case project.StatusUpdated:
		detail := fmt.Sprintf("%d lines", res.Lines())
		if res.Lookups.Lookups > 0 {
			detail += fmt.Sprintf(", %d lookups", res.Lookups.Lookups)
		}
		if res.DryRun {
			fmt.Fprintf(p.out, "%s %s %s\n", style.ArrowPrefix, name, style.Dim.Render("would update ("+detail+")"))
		} else {
			fmt.Fprintf(p.out, "%s %s %s %s\n", style.SuccessPrefix, name, style.Success.Render("DONE"), style.Dim.Render("("+detail+")"))
		}
	case project.StatusUnchanged:
		fmt.Fprintf(p.out, "%s %s %s\n", style.SkipPrefix, name, style.Dim.Render("unchanged"))
	case project.StatusSkipped:
		fmt.Fprintf(p.out, "%s %s %s\n", style.WarningPrefix, name, style.Warning.Render("skipped: ")+style.Dim.Render(errText(res.Err)))
	case project.StatusFailed:
		fmt.Fprintf(p.out, "%s %s %s\n", style.ErrorPrefix, name, style.Error.Render("failed: ")+errText(res.Err))
	}

	for _, id := range res.Unmatched {
		fmt.Fprintf(p.out, "    %s %s\n", style.WarningPrefix, style.Dim.Render("unrecognized line for "+id))
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// printSummary prints the totals of a run.
func printSummary(w io.Writer, report project.Report, elapsed time.Duration) {
	lookups := report.Lookups()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", style.Bold.Render("Projects:"), strings.Join([]string{
		style.Tally("updated", report.Count(project.StatusUpdated), style.Success),
		style.Tally("unchanged", report.Count(project.StatusUnchanged), style.Info),
		style.Tally("skipped", report.Count(project.StatusSkipped), style.Warning),
		style.Tally("failed", report.Count(project.StatusFailed), style.Error),
	}, "  "))
	fmt.Fprintf(w, "%s %s\n", style.Bold.Render("Lookups: "), strings.Join([]string{
		style.Tally("resolved", lookups.Resolved, style.Success),
		style.Tally("not found", lookups.NotFound, style.Info),
		style.Tally("non-interactive", lookups.NonInteractive, style.Info),
		style.Tally("unresolved", lookups.Unresolved+lookups.Unparsed, style.Warning),
	}, "  "))
	fmt.Fprintf(w, "%s %s\n", style.Bold.Render("Users:   "), style.Tally("known", report.Known, style.Info))
	if n := report.Unmatched(); n > 0 {
		fmt.Fprintf(w, "%s %d identifier lines were not recognized\n", style.WarningPrefix, n)
	}
	fmt.Fprintf(w, "%s\n", style.Dim.Render(fmt.Sprintf("Finished in %s", elapsed.Round(time.Millisecond))))
}
