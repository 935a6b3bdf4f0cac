// Package style holds the lipgloss styles used for userdoc's terminal output.
package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Success marks updated projects and resolved identifiers
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning marks skipped projects and unresolved lookups
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error marks failed projects
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Info is used for project names
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")) // Blue

	// Dim is used for counters, hints and unchanged projects
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	Bold = lipgloss.NewStyle().
		Bold(true)

	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
	SkipPrefix    = Dim.Render("·")
)

// Tally renders "label: n" with the count styled by st when it is non-zero.
func Tally(label string, n int, st lipgloss.Style) string {
	count := fmt.Sprintf("%d", n)
	if n == 0 {
		return Dim.Render(label+": ") + Dim.Render(count)
	}
	return Dim.Render(label+": ") + st.Render(count)
}
