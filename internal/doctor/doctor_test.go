package doctor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/steveyegge/userdoc/internal/config"
	"github.com/steveyegge/userdoc/internal/workspace"
)

func newContext(t *testing.T) *CheckContext {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Repository.Workdir = filepath.Join(dir, "clone")

	path := filepath.Join(dir, "userdoc.toml")
	if err := os.WriteFile(path, []byte("[repository]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return &CheckContext{Config: cfg, ConfigPath: path}
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckContext)
		want   CheckStatus
	}{
		{
			name: "load error",
			mutate: func(ctx *CheckContext) {
				ctx.ConfigErr = errors.New("toml: line 3: expected '='")
			},
			want: StatusError,
		},
		{
			name: "missing file",
			mutate: func(ctx *CheckContext) {
				ctx.ConfigPath = filepath.Join(t.TempDir(), "absent.toml")
			},
			want: StatusWarning,
		},
		{
			name:   "incomplete for run",
			mutate: func(ctx *CheckContext) {},
			want:   StatusWarning,
		},
		{
			name: "complete",
			mutate: func(ctx *CheckContext) {
				ctx.Config.Repository.URL = "https://gerrit.example.com/a/jfrog-config"
				ctx.Config.Lookup.URL = "https://lookup.example.com/user_lookup"
			},
			want: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(t)
			tt.mutate(ctx)
			res := NewConfigCheck().Run(ctx)
			if res.Status != tt.want {
				t.Errorf("status = %v, want %v (%s)", res.Status, tt.want, res.Message)
			}
		})
	}
}

func TestCredentialsCheck(t *testing.T) {
	ctx := newContext(t)
	ctx.Config.Credentials.UsernameEnv = "USERDOC_TEST_USER"
	ctx.Config.Credentials.TokenEnv = "USERDOC_TEST_TOKEN"

	t.Setenv("USERDOC_TEST_USER", "")
	t.Setenv("USERDOC_TEST_TOKEN", "")
	if res := NewCredentialsCheck().Run(ctx); res.Status != StatusError {
		t.Errorf("missing credentials: status = %v", res.Status)
	}

	t.Setenv("USERDOC_TEST_USER", "svc_config")
	t.Setenv("USERDOC_TEST_TOKEN", "secret")
	res := NewCredentialsCheck().Run(ctx)
	if res.Status != StatusOK {
		t.Errorf("status = %v, want ok", res.Status)
	}
	if res.Message != "Credentials set for svc_config" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestLookupEndpointCheck(t *testing.T) {
	tests := []struct {
		url  string
		want CheckStatus
	}{
		{"", StatusWarning},
		{"ftp://lookup.example.com", StatusError},
		{"https://lookup.example.com/user_lookup", StatusOK},
	}

	for _, tt := range tests {
		ctx := newContext(t)
		ctx.Config.Lookup.URL = tt.url
		if res := NewLookupEndpointCheck().Run(ctx); res.Status != tt.want {
			t.Errorf("url %q: status = %v, want %v", tt.url, res.Status, tt.want)
		}
	}
}

func TestRemoteURLCheck(t *testing.T) {
	tests := []struct {
		url  string
		want CheckStatus
	}{
		{"", StatusWarning},
		{"file:///srv/git/config.git", StatusError},
		{"https://gerrit.example.com/a/jfrog-config", StatusOK},
		{"ssh://git@gerrit.example.com:29418/jfrog-config", StatusOK},
	}

	for _, tt := range tests {
		ctx := newContext(t)
		ctx.Config.Repository.URL = tt.url
		if res := NewRemoteURLCheck().Run(ctx); res.Status != tt.want {
			t.Errorf("url %q: status = %v, want %v", tt.url, res.Status, tt.want)
		}
	}
}

func TestWorkdirCheck(t *testing.T) {
	ctx := newContext(t)
	dir := ctx.Config.Repository.Workdir
	check := NewWorkdirCheck()

	if res := check.Run(ctx); res.Status != StatusOK {
		t.Fatalf("absent workdir: status = %v (%s)", res.Status, res.Message)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if res := check.Run(ctx); res.Status != StatusError {
		t.Fatalf("stray workdir: status = %v", res.Status)
	}
	if !check.CanFix() {
		t.Fatal("workdir check should be fixable")
	}
	if err := check.Fix(ctx); err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("stray workdir still present: %v", err)
	}
}

func TestWorkdirCheck_Locked(t *testing.T) {
	ctx := newContext(t)
	lock, err := workspace.Acquire(ctx.Config.Repository.Workdir)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	if res := NewWorkdirCheck().Run(ctx); res.Status != StatusWarning {
		t.Errorf("status = %v, want warning", res.Status)
	}
}

func TestDoctorFix(t *testing.T) {
	ctx := newContext(t)
	dir := ctx.Config.Repository.Workdir
	if err := os.MkdirAll(filepath.Join(dir, "leftover"), 0755); err != nil {
		t.Fatal(err)
	}

	d := New(NewLookupEndpointCheck(), NewWorkdirCheck())

	before := d.Run(ctx)
	if !before.HasErrors() {
		t.Fatal("expected the stray workdir to be reported")
	}
	if got := before.Count(StatusWarning); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}

	after := d.Fix(ctx)
	if after.HasErrors() {
		t.Errorf("errors remain after fix: %+v", after.Results[1])
	}
	if !after.Results[1].Fixed {
		t.Error("workdir result should be marked fixed")
	}
	if after.Results[0].Fixed {
		t.Error("lookup endpoint cannot be fixed")
	}
}

func TestBaseCheckCannotFix(t *testing.T) {
	c := NewConfigCheck()
	if c.CanFix() {
		t.Error("config check should not be fixable")
	}
	if err := c.Fix(&CheckContext{}); !errors.Is(err, ErrCannotFix) {
		t.Errorf("Fix() = %v, want ErrCannotFix", err)
	}
}

func TestDefaultChecks(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range DefaultChecks() {
		if c.Name() == "" || c.Description() == "" {
			t.Errorf("check %T lacks name or description", c)
		}
		if seen[c.Name()] {
			t.Errorf("duplicate check name %q", c.Name())
		}
		seen[c.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("got %d checks, want 5", len(seen))
	}
}
