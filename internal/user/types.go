// Package user models the identifiers named in config files, the comments
// that document them, and the run-wide cache that keeps those comments
// consistent across projects.
package user

import (
	"time"
)

// CurrentInventoryVersion is the current schema version for the inventory file.
const CurrentInventoryVersion = 1

// Status describes how far an identifier's comment has been resolved.
type Status string

const (
	// StatusResolved means the comment carries both a name and an email.
	StatusResolved Status = "resolved"

	// StatusPartial means the comment carries something, but not both parts.
	StatusPartial Status = "partial"

	// StatusEmpty means the identifier has no comment at all.
	StatusEmpty Status = "empty"

	// StatusNotFound means the directory had no entry for the identifier.
	StatusNotFound Status = "not-found"

	// StatusNonInteractive means the identifier is a service account.
	StatusNonInteractive Status = "non-interactive"
)

// Kind tells people apart from service principals.
type Kind string

const (
	KindPerson  Kind = "person"
	KindService Kind = "service"
)

// Identity is the documented state of one identifier at the end of a run.
type Identity struct {
	// Username is the identifier as written in the config file.
	Username string `json:"username"`

	// Name and Email are parsed from Comment when present.
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	// Comment is the canonical comment written next to the identifier.
	Comment string `json:"comment"`

	Status Status `json:"status"`
	Kind   Kind   `json:"kind"`

	// Projects lists the projects the identifier was seen in, in run order.
	Projects []string `json:"projects,omitempty"`
}

// Inventory is the per-run export of every identifier seen.
type Inventory struct {
	// Version is the schema version.
	Version int `json:"version"`

	// RunID identifies the run that produced the inventory.
	RunID string `json:"run_id,omitempty"`

	Generated time.Time `json:"generated"`

	Identities []Identity `json:"identities"`
}
