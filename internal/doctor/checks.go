package doctor

import (
	"errors"
	"fmt"
	"os"

	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/user"
	"github.com/steveyegge/userdoc/internal/vcs"
	"github.com/steveyegge/userdoc/internal/workspace"
)

// DefaultChecks returns the checks behind `userdoc doctor`, in display order.
func DefaultChecks() []Check {
	return []Check{
		NewConfigCheck(),
		NewCredentialsCheck(),
		NewLookupEndpointCheck(),
		NewRemoteURLCheck(),
		NewWorkdirCheck(),
	}
}

// ConfigCheck verifies the config file loads and carries what a run needs.
type ConfigCheck struct {
	BaseCheck
}

// NewConfigCheck creates a new config check.
func NewConfigCheck() *ConfigCheck {
	return &ConfigCheck{
		BaseCheck: BaseCheck{
			CheckName:        "config",
			CheckDescription: "Verify the config file is present and valid",
		},
	}
}

// Run checks the result of loading the config file.
func (c *ConfigCheck) Run(ctx *CheckContext) *CheckResult {
	if ctx.ConfigErr != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%s could not be loaded", ctx.ConfigPath),
			Details: []string{ctx.ConfigErr.Error()},
			FixHint: "Fix the file or pass another one with --config",
		}
	}

	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("No %s found, using defaults", ctx.ConfigPath),
			FixHint: "Create userdoc.toml with at least [repository] url and [lookup] url",
		}
	}

	if err := ctx.Config.ValidateForRun(); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "Config is valid for scan but incomplete for run",
			Details: []string{err.Error()},
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%s is valid", ctx.ConfigPath),
	}
}

// CredentialsCheck verifies repository credentials are in the environment.
type CredentialsCheck struct {
	BaseCheck
}

// NewCredentialsCheck creates a new credentials check.
func NewCredentialsCheck() *CredentialsCheck {
	return &CredentialsCheck{
		BaseCheck: BaseCheck{
			CheckName:        "credentials",
			CheckDescription: "Verify repository credentials are set",
		},
	}
}

// Run reads the configured credential variables.
func (c *CredentialsCheck) Run(ctx *CheckContext) *CheckResult {
	cc := ctx.Config.Credentials
	creds, err := user.CredentialsFromEnv(cc.UsernameEnv, cc.TokenEnv)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Repository credentials are missing",
			Details: []string{err.Error()},
			FixHint: "Export the variables or put them in .env",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Credentials set for %s", creds.Username),
	}
}

// LookupEndpointCheck verifies the directory lookup endpoint is usable.
type LookupEndpointCheck struct {
	BaseCheck
}

// NewLookupEndpointCheck creates a new lookup endpoint check.
func NewLookupEndpointCheck() *LookupEndpointCheck {
	return &LookupEndpointCheck{
		BaseCheck: BaseCheck{
			CheckName:        "lookup-endpoint",
			CheckDescription: "Verify the lookup endpoint is configured",
		},
	}
}

// Run validates lookup.url.
func (c *LookupEndpointCheck) Run(ctx *CheckContext) *CheckResult {
	rawURL := ctx.Config.Lookup.URL
	if rawURL == "" {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "lookup.url is not set, comments will not be enriched",
			FixHint: "Set [lookup] url in the config file",
		}
	}

	if err := lookup.ValidateURL(rawURL); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "lookup.url is malformed",
			Details: []string{err.Error()},
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Lookup endpoint %s", rawURL),
	}
}

// RemoteURLCheck verifies the repository URL can be cloned.
type RemoteURLCheck struct {
	BaseCheck
}

// NewRemoteURLCheck creates a new remote URL check.
func NewRemoteURLCheck() *RemoteURLCheck {
	return &RemoteURLCheck{
		BaseCheck: BaseCheck{
			CheckName:        "remote-url",
			CheckDescription: "Verify the repository URL is well-formed",
		},
	}
}

// Run validates repository.url and compares it with an existing clone.
func (c *RemoteURLCheck) Run(ctx *CheckContext) *CheckResult {
	repo := ctx.Config.Repository
	if repo.URL == "" {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "repository.url is not set, only scan is available",
			FixHint: "Set [repository] url in the config file",
		}
	}

	if err := vcs.ValidateRemoteURL(repo.URL); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "repository.url is malformed",
			Details: []string{err.Error()},
		}
	}

	if state, err := workspace.Inspect(repo.Workdir); err == nil && state == workspace.StateRepository {
		if r, err := vcs.Open(repo.Workdir, user.Credentials{}); err == nil {
			if remote, err := r.RemoteURL(); err == nil && remote != repo.URL {
				return &CheckResult{
					Name:    c.Name(),
					Status:  StatusWarning,
					Message: "Existing clone points at a different remote",
					Details: []string{
						"Clone:  " + vcs.RedactURL(remote),
						"Config: " + vcs.RedactURL(repo.URL),
					},
					FixHint: "Remove " + repo.Workdir + " so the next run clones afresh",
				}
			}
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("Remote %s", vcs.RedactURL(repo.URL)),
	}
}

// WorkdirCheck verifies the work directory can hold a clone.
type WorkdirCheck struct {
	FixableCheck
}

// NewWorkdirCheck creates a new work directory check.
func NewWorkdirCheck() *WorkdirCheck {
	return &WorkdirCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "workdir",
				CheckDescription: "Verify the work directory is usable",
			},
		},
	}
}

// Run inspects the work directory and its lock.
func (c *WorkdirCheck) Run(ctx *CheckContext) *CheckResult {
	dir := ctx.Config.Repository.Workdir

	state, err := workspace.Inspect(dir)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("Cannot inspect %s", dir),
			Details: []string{err.Error()},
		}
	}

	if state == workspace.StateStray {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%s exists but is not a git clone", dir),
			Details: []string{"A run would fail to clone into it"},
			FixHint: "Run 'userdoc doctor --fix' to remove it",
		}
	}

	lock, err := workspace.Acquire(dir)
	if err != nil {
		status := StatusError
		if errors.Is(err, workspace.ErrWorkdirLocked) {
			status = StatusWarning
		}
		return &CheckResult{
			Name:    c.Name(),
			Status:  status,
			Message: fmt.Sprintf("Cannot lock %s", dir),
			Details: []string{err.Error()},
		}
	}
	_ = lock.Release()

	msg := fmt.Sprintf("%s will be cloned", dir)
	if state == workspace.StateRepository {
		msg = fmt.Sprintf("%s holds a clone that will be reused", dir)
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: msg,
	}
}

// Fix removes a stray work directory.
func (c *WorkdirCheck) Fix(ctx *CheckContext) error {
	dir := ctx.Config.Repository.Workdir
	state, err := workspace.Inspect(dir)
	if err != nil {
		return err
	}
	if state != workspace.StateStray {
		return nil
	}
	return workspace.Clean(dir)
}
