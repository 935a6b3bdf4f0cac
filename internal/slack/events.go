package slack

import (
	"fmt"
	"sort"
	"time"
)

// EventType identifies the type of run event.
type EventType string

// Event types for Slack notifications.
const (
	EventProjectSubmitted EventType = "project_submitted"
	EventRunCompleted     EventType = "run_completed"
	EventRunFailed        EventType = "run_failed"
)

// Field keys used in notification payloads.
const (
	FieldRun       = "run"
	FieldRepo      = "repo"
	FieldBranch    = "branch"
	FieldProject   = "project"
	FieldCommit    = "commit"
	FieldRef       = "ref"
	FieldProjects  = "projects"
	FieldUpdated   = "updated"
	FieldFailed    = "failed"
	FieldLookups   = "lookups"
	FieldUnmatched = "unmatched"
	FieldError     = "error"
)

// eventConfig holds display configuration for each event type.
type eventConfig struct {
	emoji string
	title string
}

var eventConfigs = map[EventType]eventConfig{
	EventProjectSubmitted: {emoji: "🔀", title: "Config Change Submitted"},
	EventRunCompleted:     {emoji: "✅", title: "Run Completed"},
	EventRunFailed:        {emoji: "❌", title: "Run Failed"},
}

// formatMessage creates a Slack message for the given event.
func formatMessage(event EventType, fields map[string]string) *slackMessage {
	cfg, ok := eventConfigs[event]
	if !ok {
		cfg = eventConfig{emoji: "📢", title: string(event)}
	}

	header := fmt.Sprintf("%s *%s*", cfg.emoji, cfg.title)

	var fieldBlocks []slackText
	switch event {
	case EventProjectSubmitted:
		fieldBlocks = formatProjectSubmittedFields(fields)
	case EventRunCompleted:
		fieldBlocks = formatRunCompletedFields(fields)
	case EventRunFailed:
		fieldBlocks = formatRunFailedFields(fields)
	default:
		fieldBlocks = formatGenericFields(fields)
	}

	blocks := []slackBlock{
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: header},
		},
	}

	if len(fieldBlocks) > 0 {
		blocks = append(blocks, slackBlock{
			Type:   "section",
			Fields: fieldBlocks,
		})
	}

	footer := fmt.Sprintf("_userdoc • %s_", time.Now().Format("Jan 2, 15:04 MST"))
	if run := fields[FieldRun]; run != "" {
		if len(run) > 8 {
			run = run[:8]
		}
		footer = fmt.Sprintf("_userdoc run %s • %s_", run, time.Now().Format("Jan 2, 15:04 MST"))
	}
	blocks = append(blocks, slackBlock{
		Type:   "context",
		Fields: []slackText{{Type: "mrkdwn", Text: footer}},
	})

	return &slackMessage{
		Text:   fmt.Sprintf("%s %s", cfg.emoji, cfg.title), // Fallback text
		Blocks: blocks,
	}
}

func mrkdwn(format string, args ...any) slackText {
	return slackText{Type: "mrkdwn", Text: fmt.Sprintf(format, args...)}
}

func formatProjectSubmittedFields(fields map[string]string) []slackText {
	var result []slackText
	if v := fields[FieldProject]; v != "" {
		result = append(result, mrkdwn("*Project:*\n`%s`", v))
	}
	if v := fields[FieldRef]; v != "" {
		result = append(result, mrkdwn("*Ref:*\n`%s`", v))
	}
	if v := fields[FieldCommit]; v != "" {
		result = append(result, mrkdwn("*Commit:*\n`%s`", truncate(v, 8)))
	}
	if v := fields[FieldUpdated]; v != "" {
		result = append(result, mrkdwn("*Lines:*\n%s", v))
	}
	return result
}

func formatRunCompletedFields(fields map[string]string) []slackText {
	var result []slackText
	if v := fields[FieldRepo]; v != "" {
		result = append(result, mrkdwn("*Repo:*\n%s", v))
	}
	if v := fields[FieldBranch]; v != "" {
		result = append(result, mrkdwn("*Branch:*\n`%s`", v))
	}
	if v := fields[FieldProjects]; v != "" {
		result = append(result, mrkdwn("*Projects:*\n%s", v))
	}
	if v := fields[FieldUpdated]; v != "" {
		result = append(result, mrkdwn("*Updated:*\n%s", v))
	}
	if v := fields[FieldFailed]; v != "" && v != "0" {
		result = append(result, mrkdwn("*Failed:*\n%s", v))
	}
	if v := fields[FieldLookups]; v != "" {
		result = append(result, mrkdwn("*Lookups:*\n%s", v))
	}
	if v := fields[FieldUnmatched]; v != "" && v != "0" {
		result = append(result, mrkdwn("*Unmatched:*\n%s", v))
	}
	return result
}

func formatRunFailedFields(fields map[string]string) []slackText {
	var result []slackText
	if v := fields[FieldRepo]; v != "" {
		result = append(result, mrkdwn("*Repo:*\n%s", v))
	}
	if v := fields[FieldProject]; v != "" {
		result = append(result, mrkdwn("*Project:*\n`%s`", v))
	}
	if v := fields[FieldError]; v != "" {
		result = append(result, mrkdwn("*Error:*\n```%s```", truncate(v, 200)))
	}
	return result
}

func formatGenericFields(fields map[string]string) []slackText {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []slackText
	for _, k := range keys {
		if v := fields[k]; v != "" {
			result = append(result, mrkdwn("*%s:*\n%s", k, truncate(v, 100)))
		}
	}
	return result
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
