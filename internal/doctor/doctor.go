// Package doctor runs environment checks before a userdoc run.
package doctor

import (
	"errors"
	"fmt"

	"github.com/steveyegge/userdoc/internal/config"
)

// ErrCannotFix is returned by checks that have no automatic fix.
var ErrCannotFix = errors.New("check cannot be fixed automatically")

// CheckStatus is the severity of a check result.
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	default:
		return "error"
	}
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Details []string
	FixHint string

	// Fixed is set when --fix repaired the problem.
	Fixed bool
}

// CheckContext carries what checks inspect.
type CheckContext struct {
	// Config is never nil; it holds the defaults when loading failed.
	Config *config.Config

	// ConfigPath is the file that was (or would have been) loaded.
	ConfigPath string

	// ConfigErr is the error returned while loading ConfigPath.
	ConfigErr error
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Description() string
	Run(ctx *CheckContext) *CheckResult
	CanFix() bool
	Fix(ctx *CheckContext) error
}

// BaseCheck provides the name and description of a check that cannot fix
// anything.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
}

func (b *BaseCheck) Name() string        { return b.CheckName }
func (b *BaseCheck) Description() string { return b.CheckDescription }
func (b *BaseCheck) CanFix() bool        { return false }

// Fix always returns ErrCannotFix.
func (b *BaseCheck) Fix(*CheckContext) error { return ErrCannotFix }

// FixableCheck is embedded by checks that implement Fix.
type FixableCheck struct {
	BaseCheck
}

func (f *FixableCheck) CanFix() bool { return true }

// Report holds the results of a doctor run in check order.
type Report struct {
	Results []*CheckResult
}

// Count returns how many results have status.
func (r *Report) Count(status CheckStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// HasErrors reports whether any check ended with StatusError.
func (r *Report) HasErrors() bool {
	return r.Count(StatusError) > 0
}

// Doctor runs a list of checks.
type Doctor struct {
	checks []Check
}

// New creates a doctor with the given checks.
func New(checks ...Check) *Doctor {
	return &Doctor{checks: checks}
}

// Register appends checks.
func (d *Doctor) Register(checks ...Check) {
	d.checks = append(d.checks, checks...)
}

// Checks returns the registered checks.
func (d *Doctor) Checks() []Check {
	return d.checks
}

// Run executes every check.
func (d *Doctor) Run(ctx *CheckContext) *Report {
	report := &Report{}
	for _, c := range d.checks {
		report.Results = append(report.Results, c.Run(ctx))
	}
	return report
}

// Fix executes every check and tries to fix the failing ones that can be
// fixed. Fixed checks are run again so the report shows their new state.
func (d *Doctor) Fix(ctx *CheckContext) *Report {
	report := &Report{}
	for _, c := range d.checks {
		res := c.Run(ctx)
		if res.Status != StatusOK && c.CanFix() {
			if err := c.Fix(ctx); err != nil {
				res.Details = append(res.Details, fmt.Sprintf("fix failed: %v", err))
			} else {
				res = c.Run(ctx)
				res.Fixed = true
			}
		}
		report.Results = append(report.Results, res)
	}
	return report
}
