// Package annotate extracts identifier lists from per-project config files and
// rewrites their lines into the canonical annotated form.
//
// The config file is treated as text. A list region starts right after the
// list key line (`userNames:`) and ends right before the terminator line
// (`    - state:`); everything in between is one identifier per line, optionally
// followed by a `#` comment.
package annotate

import (
	"fmt"
	"regexp"
	"strings"
)

// Default format values used by the JFrog service config files.
const (
	DefaultListKey          = "userNames"
	DefaultTerminatorKey    = "state"
	DefaultTerminatorIndent = 4
	DefaultSpacing          = 12
)

// Format describes where identifier lists live in a config file and how
// annotated lines are laid out.
type Format struct {
	// ListKey opens a list region (`userNames:`).
	ListKey string

	// TerminatorKey closes a list region (`- state:`).
	TerminatorKey string

	// TerminatorIndent is the number of whitespace characters in front of
	// the terminator's list hyphen.
	TerminatorIndent int

	// Spacing is the number of spaces between an identifier and its comment.
	Spacing int
}

// DefaultFormat returns the format of the JFrog service config files.
func DefaultFormat() Format {
	return Format{
		ListKey:          DefaultListKey,
		TerminatorKey:    DefaultTerminatorKey,
		TerminatorIndent: DefaultTerminatorIndent,
		Spacing:          DefaultSpacing,
	}
}

// Validate reports whether the format can be compiled into patterns.
func (f Format) Validate() error {
	if strings.TrimSpace(f.ListKey) == "" {
		return fmt.Errorf("format: list key is required")
	}
	if strings.TrimSpace(f.TerminatorKey) == "" {
		return fmt.Errorf("format: terminator key is required")
	}
	if f.TerminatorIndent < 0 {
		return fmt.Errorf("format: terminator indent must not be negative")
	}
	if f.Spacing < 1 {
		return fmt.Errorf("format: spacing must be at least 1")
	}
	return nil
}

// regionPattern matches one list region; group 1 is the region body.
func (f Format) regionPattern() (*regexp.Regexp, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	expr := fmt.Sprintf(`(?s)%s:[ \t]*\r?\n(.*?)\s{%d}-\s%s:`,
		regexp.QuoteMeta(f.ListKey),
		f.TerminatorIndent,
		regexp.QuoteMeta(f.TerminatorKey),
	)
	return regexp.Compile(expr)
}

// Canonical renders the canonical annotation for an identifier, without the
// list hyphen prefix. An empty comment renders the bare identifier.
func (f Format) Canonical(identifier, comment string) string {
	if comment == "" {
		return identifier
	}
	return identifier + strings.Repeat(" ", f.Spacing) + comment
}
