package user

import (
	"strings"
)

const (
	// NotFoundComment marks an identifier the directory has no entry for.
	NotFoundComment = "# username Not Found"

	// NonInteractiveComment marks a service account.
	NonInteractiveComment = "# Non-interactive user"
)

// FormatComment renders the resolved comment for a person.
func FormatComment(name, email string) string {
	return "# " + name + " - " + email
}

// NormalizeComment turns the raw text found after `#` in a config file into
// the cache form. Blank input stays blank.
func NormalizeComment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return "# " + raw
}

// NeedsEnrichment reports whether a comment still lacks an email or a full
// name. Sentinel comments count as incomplete.
func NeedsEnrichment(comment string) bool {
	return !strings.Contains(comment, "@") || !strings.Contains(comment, ",")
}

// CommentParts is the name and email found in a comment. Either may be absent.
type CommentParts struct {
	Name     string
	Email    string
	HasName  bool
	HasEmail bool
}

// ParseComment splits a cached comment into its name and email parts.
// Sentinel and empty comments have neither.
func ParseComment(comment string) CommentParts {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment), "#"))
	if body == "" || comment == NotFoundComment || comment == NonInteractiveComment {
		return CommentParts{}
	}

	var parts CommentParts
	name, email, found := cutLast(body, " - ")
	if !found {
		if isEmail(body) {
			return CommentParts{Email: body, HasEmail: true}
		}
		return CommentParts{Name: body, HasName: true}
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if isEmail(email) {
		parts.Email, parts.HasEmail = email, true
	} else if email != "" {
		name = strings.TrimSpace(body)
	}
	if name != "" {
		parts.Name, parts.HasName = name, true
	}
	return parts
}

// StatusOf classifies a cached comment.
func StatusOf(comment string) Status {
	switch comment {
	case "":
		return StatusEmpty
	case NotFoundComment:
		return StatusNotFound
	case NonInteractiveComment:
		return StatusNonInteractive
	}
	p := ParseComment(comment)
	if p.HasName && p.HasEmail {
		return StatusResolved
	}
	return StatusPartial
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

func isEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
