package user

import (
	"reflect"
	"sync"
	"testing"

	"github.com/steveyegge/userdoc/internal/annotate"
)

func entries(pairs ...string) []annotate.Entry {
	var out []annotate.Entry
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, annotate.Entry{
			Identifier: pairs[i],
			Comment:    pairs[i+1],
			HasComment: pairs[i+1] != "",
		})
	}
	return out
}

func TestCache_SyncSeedsNewIdentifiers(t *testing.T) {
	c := NewCache()
	v := c.Sync("alpha", entries("alice", "", "bob", "bob-old-comment"))

	if got := v.Identifiers(); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Fatalf("identifiers = %v", got)
	}
	if got := v.Comment("alice"); got != "" {
		t.Errorf("alice comment = %q, want empty", got)
	}
	if got := v.Comment("bob"); got != "# bob-old-comment" {
		t.Errorf("bob comment = %q", got)
	}
	if got, ok := c.Comment("bob"); !ok || got != "# bob-old-comment" {
		t.Errorf("cache bob = %q, %v", got, ok)
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestCache_CachedCommentWins(t *testing.T) {
	c := NewCache()
	v1 := c.Sync("alpha", entries("bob", "bob-old-comment"))
	v1.Set("bob", "# Bob Smith - bob@x.com")

	v2 := c.Sync("beta", entries("bob", "some other text"))
	if got := v2.Comment("bob"); got != "# Bob Smith - bob@x.com" {
		t.Errorf("beta bob = %q, want resolved comment from alpha", got)
	}
	if got := c.Projects("bob"); !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Errorf("projects = %v", got)
	}
}

func TestCache_ViewWritesThrough(t *testing.T) {
	c := NewCache()
	v := c.Sync("alpha", entries("carol", ""))
	v.Set("carol", NotFoundComment)

	got, ok := c.Comment("carol")
	if !ok || got != NotFoundComment {
		t.Errorf("cache carol = %q, %v", got, ok)
	}
	if v.Comment("carol") != got {
		t.Error("view and cache diverged")
	}
}

func TestCache_DuplicateEntriesKeepFirst(t *testing.T) {
	c := NewCache()
	v := c.Sync("alpha", entries("bob", "first", "bob", "second"))

	if v.Len() != 1 {
		t.Fatalf("len = %d, want 1", v.Len())
	}
	if got := v.Comment("bob"); got != "# first" {
		t.Errorf("bob = %q", got)
	}
	if got := c.Projects("bob"); len(got) != 1 {
		t.Errorf("projects = %v, want one entry", got)
	}
}

func TestCache_Attempted(t *testing.T) {
	c := NewCache()
	v1 := c.Sync("alpha", entries("bob", ""))
	if v1.Attempted("bob") {
		t.Fatal("fresh identifier should not be attempted")
	}
	v1.MarkAttempted("bob")

	v2 := c.Sync("beta", entries("bob", ""))
	if !v2.Attempted("bob") {
		t.Error("attempt should carry across projects")
	}
	if v2.Attempted("nobody") {
		t.Error("unknown identifier should not be attempted")
	}
}

func TestCache_Snapshot(t *testing.T) {
	c := NewCache()
	v := c.Sync("alpha", entries("zed", "", "svc_sid_backup", "", "alice", ""))
	v.Set("alice", FormatComment("Alice Smith", "alice@x.com"))
	v.Set("svc_sid_backup", NonInteractiveComment)

	snap := c.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot = %d, want 3", len(snap))
	}

	if snap[0].Username != "alice" || snap[1].Username != "svc_sid_backup" || snap[2].Username != "zed" {
		t.Errorf("snapshot not sorted: %v", snap)
	}
	if snap[0].Status != StatusResolved || snap[0].Email != "alice@x.com" || snap[0].Kind != KindPerson {
		t.Errorf("alice = %+v", snap[0])
	}
	if snap[1].Kind != KindService {
		t.Errorf("svc kind = %q", snap[1].Kind)
	}
	if snap[2].Status != StatusEmpty {
		t.Errorf("zed status = %q", snap[2].Status)
	}
}

func TestCache_ConcurrentViews(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for _, p := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(project string) {
			defer wg.Done()
			v := c.Sync(project, entries("shared", ""))
			v.Set("shared", "# Shared, User - s@x.com")
			v.MarkAttempted("shared")
		}(p)
	}
	wg.Wait()

	if got, _ := c.Comment("shared"); got != "# Shared, User - s@x.com" {
		t.Errorf("shared = %q", got)
	}
	if got := len(c.Projects("shared")); got != 4 {
		t.Errorf("projects = %d, want 4", got)
	}
}
