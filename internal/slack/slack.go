package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const notifyTimeout = 5 * time.Second

// Client sends notifications to Slack via incoming webhooks.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	notifyOn   NotifySettings
	logger     *slog.Logger
}

// NewClient creates a new Slack client from configuration.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil || !cfg.Enabled || cfg.WebhookURL == "" {
		return &Client{enabled: false, logger: logger}
	}

	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    true,
		notifyOn:   cfg.NotifyOn,
		httpClient: &http.Client{
			Timeout: notifyTimeout,
		},
		logger: logger,
	}
}

// Enabled reports whether the client will send anything.
func (c *Client) Enabled() bool { return c != nil && c.enabled }

// slackMessage represents a Slack webhook payload.
type slackMessage struct {
	Channel string       `json:"channel,omitempty"`
	Text    string       `json:"text,omitempty"`
	Blocks  []slackBlock `json:"blocks,omitempty"`
}

// slackBlock represents a Slack Block Kit block.
type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

// slackText represents text in a Slack block.
type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Post sends a message to Slack.
func (c *Client) Post(ctx context.Context, event EventType, fields map[string]string) error {
	if !c.Enabled() || !c.shouldNotify(event) {
		return nil
	}

	msg := formatMessage(event, fields)
	if c.channel != "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}

// Notify posts an event and logs failures instead of returning them. It
// blocks for at most five seconds so a batch run can exit right after.
func (c *Client) Notify(ctx context.Context, event EventType, fields map[string]string) {
	if !c.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := c.Post(ctx, event, fields); err != nil {
		c.logger.Warn("slack notification failed", "event", string(event), "err", err)
	}
}

// shouldNotify checks if the given event type should trigger a notification.
func (c *Client) shouldNotify(event EventType) bool {
	switch event {
	case EventProjectSubmitted:
		return c.notifyOn.ProjectSubmitted
	case EventRunCompleted:
		return c.notifyOn.RunCompleted
	case EventRunFailed:
		return c.notifyOn.RunFailed
	default:
		return true
	}
}
