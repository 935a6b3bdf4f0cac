// Package config loads userdoc configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/userdoc/internal/annotate"
	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/slack"
	"github.com/steveyegge/userdoc/internal/user"
)

const (
	// DefaultConfigFile is looked up in the working directory when no
	// --config flag is given.
	DefaultConfigFile = "userdoc.toml"

	DefaultBranch          = "master"
	DefaultWorkdir         = "config_repository"
	DefaultProjectFile     = "jfrog-service.yaml"
	DefaultReviewRefPrefix = "refs/for/"
	DefaultMessagePrefix   = "Config Changes for: "
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full userdoc configuration.
type Config struct {
	Repository  RepositoryConfig  `toml:"repository"`
	Credentials CredentialsConfig `toml:"credentials"`
	Lookup      LookupConfig      `toml:"lookup"`
	Format      FormatConfig      `toml:"format"`
	Commit      CommitConfig      `toml:"commit"`
	Notify      NotifyConfig      `toml:"notify"`
	Output      OutputConfig      `toml:"output"`
}

// RepositoryConfig describes the config repository and its layout.
type RepositoryConfig struct {
	// URL is the clone URL. Credentials are supplied separately.
	URL string `toml:"url"`

	Branch  string `toml:"branch"`
	Workdir string `toml:"workdir"`

	// ConfigFile is the per-project file name.
	ConfigFile string `toml:"config_file"`

	// ReviewRefPrefix is prepended to the branch name on push.
	ReviewRefPrefix string `toml:"review_ref_prefix"`

	// ProjectGlobs and ExcludeGlobs filter project directory names.
	ProjectGlobs []string `toml:"project_globs"`
	ExcludeGlobs []string `toml:"exclude_globs"`
}

// CredentialsConfig names the environment variables holding credentials.
type CredentialsConfig struct {
	UsernameEnv string `toml:"username_env"`
	TokenEnv    string `toml:"token_env"`
}

// LookupConfig configures the directory lookup client.
type LookupConfig struct {
	URL            string   `toml:"url"`
	FormField      string   `toml:"form_field"`
	Timeout        Duration `toml:"timeout"`
	RequestTimeout Duration `toml:"request_timeout"`
	MinInterval    Duration `toml:"min_interval"`

	SuccessMarker         string   `toml:"success_marker"`
	NotFoundMarker        string   `toml:"not_found_marker"`
	NonInteractiveMarkers []string `toml:"non_interactive_markers"`
}

// FormatConfig describes the list region inside config files.
type FormatConfig struct {
	ListKey          string `toml:"list_key"`
	TerminatorKey    string `toml:"terminator_key"`
	TerminatorIndent int    `toml:"terminator_indent"`
	Spacing          int    `toml:"spacing"`
}

// CommitConfig controls per-project commits.
type CommitConfig struct {
	MessagePrefix string `toml:"message_prefix"`
	AuthorName    string `toml:"author_name"`
	AuthorEmail   string `toml:"author_email"`
}

// NotifyConfig groups notification targets.
type NotifyConfig struct {
	Slack slack.Config `toml:"slack"`
}

// OutputConfig names optional run artifacts.
type OutputConfig struct {
	Inventory   string `toml:"inventory"`
	MetricsFile string `toml:"metrics_file"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	markers := lookup.DefaultMarkers()
	f := annotate.DefaultFormat()

	return &Config{
		Repository: RepositoryConfig{
			Branch:          DefaultBranch,
			Workdir:         DefaultWorkdir,
			ConfigFile:      DefaultProjectFile,
			ReviewRefPrefix: DefaultReviewRefPrefix,
		},
		Credentials: CredentialsConfig{
			UsernameEnv: user.DefaultUsernameEnv,
			TokenEnv:    user.DefaultTokenEnv,
		},
		Lookup: LookupConfig{
			FormField:             lookup.DefaultFormField,
			Timeout:               Duration{lookup.DefaultTimeout},
			RequestTimeout:        Duration{lookup.DefaultRequestTimeout},
			MinInterval:           Duration{lookup.DefaultMinInterval},
			SuccessMarker:         markers.Success,
			NotFoundMarker:        markers.NotFound,
			NonInteractiveMarkers: markers.NonInteractive,
		},
		Format: FormatConfig{
			ListKey:          f.ListKey,
			TerminatorKey:    f.TerminatorKey,
			TerminatorIndent: f.TerminatorIndent,
			Spacing:          f.Spacing,
		},
		Commit: CommitConfig{
			MessagePrefix: DefaultMessagePrefix,
		},
		Notify: NotifyConfig{
			Slack: *slack.DefaultConfig(),
		},
	}
}

// AnnotateFormat converts the format section.
func (c *Config) AnnotateFormat() annotate.Format {
	return annotate.Format{
		ListKey:          c.Format.ListKey,
		TerminatorKey:    c.Format.TerminatorKey,
		TerminatorIndent: c.Format.TerminatorIndent,
		Spacing:          c.Format.Spacing,
	}
}

// LookupMarkers converts the marker settings.
func (c *Config) LookupMarkers() lookup.Markers {
	return lookup.Markers{
		Success:        c.Lookup.SuccessMarker,
		NotFound:       c.Lookup.NotFoundMarker,
		NonInteractive: c.Lookup.NonInteractiveMarkers,
	}
}

// LookupOptions returns client options for the lookup section.
func (c *Config) LookupOptions() []lookup.Option {
	return []lookup.Option{
		lookup.WithFormField(c.Lookup.FormField),
		lookup.WithTimeout(c.Lookup.Timeout.Duration),
		lookup.WithRequestTimeout(c.Lookup.RequestTimeout.Duration),
		lookup.WithMinInterval(c.Lookup.MinInterval.Duration),
		lookup.WithMarkers(c.LookupMarkers()),
	}
}

// CommitMessage returns the commit message for a project.
func (c *Config) CommitMessage(project string) string {
	return c.Commit.MessagePrefix + project
}

// Validate checks settings every command relies on.
func (c *Config) Validate() error {
	var problems []string

	if err := c.AnnotateFormat().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Repository.ConfigFile == "" {
		problems = append(problems, "repository.config_file is empty")
	}
	if c.Lookup.Timeout.Duration <= 0 {
		problems = append(problems, "lookup.timeout must be positive")
	}
	if c.Lookup.RequestTimeout.Duration < 0 || c.Lookup.MinInterval.Duration < 0 {
		problems = append(problems, "lookup durations must not be negative")
	}
	if c.Lookup.SuccessMarker == "" {
		problems = append(problems, "lookup.success_marker is empty")
	}
	if c.Lookup.FormField == "" {
		problems = append(problems, "lookup.form_field is empty")
	}
	if c.Lookup.URL != "" {
		if err := lookup.ValidateURL(c.Lookup.URL); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if err := c.Notify.Slack.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateForRun additionally checks what a full run against the remote
// repository needs.
func (c *Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var problems []string
	if c.Repository.URL == "" {
		problems = append(problems, "repository.url is empty")
	}
	if c.Repository.Branch == "" {
		problems = append(problems, "repository.branch is empty")
	}
	if c.Repository.Workdir == "" {
		problems = append(problems, "repository.workdir is empty")
	}
	if c.Lookup.URL == "" {
		problems = append(problems, "lookup.url is empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
