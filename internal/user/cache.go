package user

import (
	"sort"
	"sync"

	"github.com/steveyegge/userdoc/internal/annotate"
)

type cacheEntry struct {
	comment   string
	attempted bool
	projects  []string
}

// Cache maps identifiers to their comment for the lifetime of a run. Entries
// are added lazily and never removed. One mutex guards all reads and writes.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Sync seeds a fresh project view from the entries extracted from that
// project's config file. An identifier new to the cache takes the comment
// found on its line; a known identifier takes the cached comment and the
// line's own comment is ignored.
func (c *Cache) Sync(project string, entries []annotate.Entry) *View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := &View{
		cache:    c,
		project:  project,
		comments: make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		if _, dup := v.comments[e.Identifier]; dup {
			continue
		}
		ce, ok := c.entries[e.Identifier]
		if !ok {
			ce = &cacheEntry{comment: NormalizeComment(e.Comment)}
			c.entries[e.Identifier] = ce
			c.order = append(c.order, e.Identifier)
		}
		ce.projects = append(ce.projects, project)

		v.ids = append(v.ids, e.Identifier)
		v.comments[e.Identifier] = ce.comment
	}

	return v
}

// Comment returns the cached comment of identifier.
func (c *Cache) Comment(identifier string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ce, ok := c.entries[identifier]
	if !ok {
		return "", false
	}
	return ce.comment, true
}

// Len returns the number of identifiers seen so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Projects lists the projects identifier was seen in, in run order.
func (c *Cache) Projects(identifier string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ce, ok := c.entries[identifier]
	if !ok {
		return nil
	}
	return append([]string(nil), ce.projects...)
}

// Snapshot returns every identifier seen, sorted by username.
func (c *Cache) Snapshot() []Identity {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Identity, 0, len(c.entries))
	for _, id := range c.order {
		ce := c.entries[id]
		parts := ParseComment(ce.comment)
		status := StatusOf(ce.comment)
		kind := KindPerson
		if status == StatusNonInteractive {
			kind = KindService
		}
		out = append(out, Identity{
			Username: id,
			Name:     parts.Name,
			Email:    parts.Email,
			Comment:  ce.comment,
			Status:   status,
			Kind:     kind,
			Projects: append([]string(nil), ce.projects...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (c *Cache) set(identifier, comment string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ce, ok := c.entries[identifier]
	if !ok {
		ce = &cacheEntry{}
		c.entries[identifier] = ce
		c.order = append(c.order, identifier)
	}
	ce.comment = comment
}

func (c *Cache) attempted(identifier string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ce, ok := c.entries[identifier]
	return ok && ce.attempted
}

func (c *Cache) markAttempted(identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ce, ok := c.entries[identifier]; ok {
		ce.attempted = true
	}
}

// View is the identifier -> comment mapping of a single project. It is
// created by Cache.Sync and writes every update back to the cache.
type View struct {
	cache    *Cache
	project  string
	ids      []string
	comments map[string]string
}

// Project returns the project the view belongs to.
func (v *View) Project() string { return v.project }

// Identifiers returns the project's identifiers in first-seen order.
func (v *View) Identifiers() []string {
	return append([]string(nil), v.ids...)
}

// Comment returns the current comment of identifier in this project.
func (v *View) Comment(identifier string) string {
	return v.comments[identifier]
}

// Len returns the number of identifiers in the view.
func (v *View) Len() int { return len(v.ids) }

// Set updates identifier's comment in the view and in the cache.
func (v *View) Set(identifier, comment string) {
	if _, ok := v.comments[identifier]; !ok {
		v.ids = append(v.ids, identifier)
	}
	v.comments[identifier] = comment
	v.cache.set(identifier, comment)
}

// Attempted reports whether a lookup was already tried for identifier
// during this run, in any project.
func (v *View) Attempted(identifier string) bool {
	return v.cache.attempted(identifier)
}

// MarkAttempted records that a lookup was tried for identifier.
func (v *View) MarkAttempted(identifier string) {
	v.cache.markAttempted(identifier)
}

var _ annotate.Annotations = (*View)(nil)
