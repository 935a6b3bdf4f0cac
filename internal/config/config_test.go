package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/userdoc/internal/annotate"
)

const sampleTOML = `
[repository]
url = "https://gerrit.example.com/a/jfrog-config"
branch = "main"
workdir = "/tmp/userdoc/clone"
project_globs = ["team-*"]
exclude_globs = ["team-legacy"]

[credentials]
username_env = "UD_USER"
token_env = "UD_TOKEN"

[lookup]
url = "https://ldap-lookup.example.com/query"
timeout = "3s"
min_interval = "0s"
non_interactive_markers = ["svc_"]

[format]
spacing = 8

[commit]
author_name = "Config Bot"
author_email = "bot@example.com"

[notify.slack]
enabled = true
webhook_url = "https://hooks.slack.com/services/T/B/X"

[notify.slack.notify_on]
project_submitted = true

[output]
inventory = "out/inventory.json"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBranch, cfg.Repository.Branch)
	assert.Equal(t, DefaultProjectFile, cfg.Repository.ConfigFile)
	assert.Equal(t, "refs/for/", cfg.Repository.ReviewRefPrefix)
	assert.Equal(t, "username", cfg.Credentials.UsernameEnv)
	assert.Equal(t, "GERRIT", cfg.Credentials.TokenEnv)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Lookup.MinInterval.Duration)
	assert.Equal(t, []string{"sid", "gid"}, cfg.Lookup.NonInteractiveMarkers)
	assert.Equal(t, annotate.DefaultFormat(), cfg.AnnotateFormat())
	assert.Equal(t, "Config Changes for: libs", cfg.CommitMessage("libs"))
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateForRun(), "defaults have no repository or lookup url")
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "userdoc.toml", sampleTOML)

	cfg, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Repository.Branch)
	assert.Equal(t, []string{"team-*"}, cfg.Repository.ProjectGlobs)
	assert.Equal(t, []string{"team-legacy"}, cfg.Repository.ExcludeGlobs)
	assert.Equal(t, DefaultProjectFile, cfg.Repository.ConfigFile, "unset keys keep defaults")
	assert.Equal(t, "UD_USER", cfg.Credentials.UsernameEnv)
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout.Duration)
	assert.Zero(t, cfg.Lookup.MinInterval.Duration)
	assert.Equal(t, []string{"svc_"}, cfg.LookupMarkers().NonInteractive)
	assert.Equal(t, "company", cfg.LookupMarkers().Success)
	assert.Equal(t, 8, cfg.AnnotateFormat().Spacing)
	assert.Equal(t, "userNames", cfg.AnnotateFormat().ListKey)
	assert.Equal(t, "Config Bot", cfg.Commit.AuthorName)
	assert.True(t, cfg.Notify.Slack.Enabled)
	assert.True(t, cfg.Notify.Slack.NotifyOn.ProjectSubmitted)
	assert.Equal(t, "out/inventory.json", cfg.Output.Inventory)
	assert.NoError(t, cfg.ValidateForRun())
	assert.Len(t, cfg.LookupOptions(), 5)
}

func TestLoad_DefaultFileAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_DefaultFilePresent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultConfigFile, "[repository]\nbranch = \"release\"\n")
	t.Chdir(dir)

	cfg, err := NewLoader(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Repository.Branch)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[repository\nurl = 1"},
		{"bad duration", "[lookup]\ntimeout = \"soon\"\n"},
		{"zero timeout", "[lookup]\ntimeout = \"0s\"\n"},
		{"bad lookup url", "[lookup]\nurl = \"ldap://dir\"\n"},
		{"spacing", "[format]\nspacing = 0\n"},
		{"slack without webhook", "[notify.slack]\nenabled = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "userdoc.toml", tt.content)
			_, err := NewLoader(nil).Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate_WrapsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Repository.ConfigFile = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "config_file")
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Duration)

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))

	assert.Error(t, d.UnmarshalText([]byte("ten")))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "UD_DOTENV_USER=envuser\nUD_DOTENV_TOKEN=envtoken\n")
	t.Setenv("UD_DOTENV_USER", "")
	os.Unsetenv("UD_DOTENV_USER")
	t.Setenv("UD_DOTENV_TOKEN", "preset")

	require.NoError(t, NewLoader(nil).LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "envuser", os.Getenv("UD_DOTENV_USER"))
	assert.Equal(t, "preset", os.Getenv("UD_DOTENV_TOKEN"), "existing variables win")
}
