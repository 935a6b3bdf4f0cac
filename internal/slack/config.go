// Package slack posts userdoc run notifications to a Slack incoming webhook.
package slack

import (
	"fmt"
	"net/url"
)

// Config holds Slack notification configuration.
type Config struct {
	// Enabled controls whether Slack notifications are active.
	Enabled bool `toml:"enabled" json:"enabled"`

	// WebhookURL is the Slack incoming webhook URL.
	WebhookURL string `toml:"webhook_url" json:"webhook_url"`

	// Channel is the default channel (can be overridden by webhook config).
	Channel string `toml:"channel" json:"channel,omitempty"`

	// NotifyOn controls which events trigger notifications.
	NotifyOn NotifySettings `toml:"notify_on" json:"notify_on"`
}

// NotifySettings controls which events trigger Slack notifications.
type NotifySettings struct {
	// ProjectSubmitted notifies when a project's change is pushed for review.
	ProjectSubmitted bool `toml:"project_submitted" json:"project_submitted"`

	// RunCompleted notifies with the run summary.
	RunCompleted bool `toml:"run_completed" json:"run_completed"`

	// RunFailed notifies when the run aborts.
	RunFailed bool `toml:"run_failed" json:"run_failed"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		NotifyOn: NotifySettings{
			ProjectSubmitted: false, // one message per project is noisy
			RunCompleted:     true,
			RunFailed:        true,
		},
	}
}

// Validate checks the webhook URL of an enabled config.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.WebhookURL == "" {
		return fmt.Errorf("slack is enabled but webhook_url is empty")
	}
	u, err := url.Parse(c.WebhookURL)
	if err != nil {
		return fmt.Errorf("parsing slack webhook_url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("slack webhook_url must be http or https: %s", c.WebhookURL)
	}
	return nil
}
