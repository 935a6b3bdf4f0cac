package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticAnnotations is an ordered identifier -> comment list for tests.
type staticAnnotations struct {
	ids      []string
	comments map[string]string
}

func annotations(pairs ...string) staticAnnotations {
	a := staticAnnotations{comments: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.ids = append(a.ids, pairs[i])
		a.comments[pairs[i]] = pairs[i+1]
	}
	return a
}

func (a staticAnnotations) Identifiers() []string    { return a.ids }
func (a staticAnnotations) Comment(id string) string { return a.comments[id] }

func newTestRewriter(t *testing.T) *Rewriter {
	t.Helper()
	r, err := NewRewriter(DefaultFormat())
	require.NoError(t, err)
	return r
}

var pad = strings.Repeat(" ", DefaultSpacing)

func TestRewrite_BareLine(t *testing.T) {
	text := "    userNames:\n      - alice\n    - state: present\n"
	res := newTestRewriter(t).Rewrite(text, annotations("alice", "# Alice, Smith - alice@x.com"))

	assert.Equal(t, "    userNames:\n      - alice"+pad+"# Alice, Smith - alice@x.com\n    - state: present\n", res.Text)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, StateBare, res.Changes[0].State)
	assert.Equal(t, 1, res.Changes[0].Lines)
	assert.Empty(t, res.Unmatched)
}

func TestRewrite_BareWinsOverCommented(t *testing.T) {
	text := "      - alice # alice@x.com\n      - alice\n"
	res := newTestRewriter(t).Rewrite(text, annotations("alice", "# A - alice@x.com"))

	require.Len(t, res.Changes, 1)
	assert.Equal(t, StateBare, res.Changes[0].State)
	assert.Equal(t, "      - alice # alice@x.com\n      - alice"+pad+"# A - alice@x.com\n", res.Text)
}

func TestRewrite_States(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		state LineState
	}{
		{"bare", "  - bob", StateBare},
		{"bare trailing spaces", "  - bob   ", StateBare},
		{"email only", "  - bob # bob@x.com", StateEmailOnly},
		{"full name", "  - bob    # Smith, Bob", StateNameOnly},
		{"other", "  - bob # old note", StateOther},
		{"other no space", "  - bob#note", StateOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, Classify(tt.line+"\n", "bob"))

			res := newTestRewriter(t).Rewrite(tt.line+"\n", annotations("bob", "# Bob Smith - bob@x.com"))
			assert.Equal(t, "  - bob"+pad+"# Bob Smith - bob@x.com\n", res.Text)
		})
	}
}

func TestRewrite_ReplacesAllOccurrencesOfWinningPattern(t *testing.T) {
	text := "a:\n  - bob # bob@old.com\nb:\n  - bob # bob@older.com\n"
	res := newTestRewriter(t).Rewrite(text, annotations("bob", "# Bob - bob@x.com"))

	assert.Equal(t, "a:\n  - bob"+pad+"# Bob - bob@x.com\nb:\n  - bob"+pad+"# Bob - bob@x.com\n", res.Text)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, 2, res.Changes[0].Lines)
}

func TestRewrite_Unmatched(t *testing.T) {
	text := "  - alice\n"
	res := newTestRewriter(t).Rewrite(text, annotations("zed", "# Zed - z@x.com"))

	assert.Equal(t, text, res.Text)
	assert.Equal(t, []string{"zed"}, res.Unmatched)
	assert.Equal(t, StateNoMatch, Classify(text, "zed"))
}

func TestRewrite_PrefixIdentifierUntouched(t *testing.T) {
	text := "  - al\n  - alice # Alice - alice@x.com\n"
	res := newTestRewriter(t).Rewrite(text, annotations("al", "# Al - al@x.com"))

	assert.Equal(t, "  - al"+pad+"# Al - al@x.com\n  - alice # Alice - alice@x.com\n", res.Text)
}

func TestRewrite_RegexMetacharactersInIdentifier(t *testing.T) {
	text := "  - a.b+c\n  - aXb+c\n"
	res := newTestRewriter(t).Rewrite(text, annotations("a.b+c", "# note"))

	assert.Equal(t, "  - a.b+c"+pad+"# note\n  - aXb+c\n", res.Text)
}

func TestRewrite_DollarInComment(t *testing.T) {
	text := "  - bob\n"
	res := newTestRewriter(t).Rewrite(text, annotations("bob", "# costs $1 - b@x.com"))
	assert.Equal(t, "  - bob"+pad+"# costs $1 - b@x.com\n", res.Text)
}

func TestRewrite_EmptyCommentKeepsBareIdentifier(t *testing.T) {
	text := "  - bob   \n"
	res := newTestRewriter(t).Rewrite(text, annotations("bob", ""))
	assert.Equal(t, "  - bob\n", res.Text)
}

func TestRewrite_DoesNotSwallowFollowingBlankLine(t *testing.T) {
	text := "  - bob\n\n  - carol\n"
	res := newTestRewriter(t).Rewrite(text, annotations("bob", "# Bob - b@x.com"))
	assert.Equal(t, "  - bob"+pad+"# Bob - b@x.com\n\n  - carol\n", res.Text)
}

func TestRewrite_PreservesCRLF(t *testing.T) {
	text := "  - bob\r\n  - carol # c\r\n"
	res := newTestRewriter(t).Rewrite(text, annotations("bob", "# B - b@x.com", "carol", "# C, D - c@x.com"))
	assert.Equal(t, "  - bob"+pad+"# B - b@x.com\r\n  - carol"+pad+"# C, D - c@x.com\r\n", res.Text)
}

func TestRewrite_Idempotent(t *testing.T) {
	ann := annotations(
		"alice", "# Alice, Smith - alice@x.com",
		"bob", "# Bob Smith - bob@x.com",
		"carol", "# username Not Found",
		"svc_sid_backup", "# Non-interactive user",
		"dave", "",
		"erin", "# Erin, Example",
	)
	r := newTestRewriter(t)

	once := r.Rewrite(sampleConfig+"      - dave # d\n      - erin #e@x.com\n", ann)
	twice := r.Rewrite(once.Text, ann)

	assert.Equal(t, once.Text, twice.Text)
	assert.Empty(t, twice.Changes)
	assert.NotEmpty(t, once.Changes)
}

func TestRewrite_MixedFormsConvergeOverPasses(t *testing.T) {
	text := "a:\n  userNames:\n  - bob\n  - state: present\nb:\n  userNames:\n  - bob # legacy\n  - state: present\n"
	ann := annotations("bob", "# username Not Found")
	r := newTestRewriter(t)

	once := r.Rewrite(text, ann)
	require.Len(t, once.Changes, 1)
	assert.Equal(t, StateBare, once.Changes[0].State)
	assert.Contains(t, once.Text, "  - bob # legacy\n")

	twice := r.Rewrite(once.Text, ann)
	require.Len(t, twice.Changes, 1)
	assert.Equal(t, StateOther, twice.Changes[0].State)

	thrice := r.Rewrite(twice.Text, ann)
	assert.Empty(t, thrice.Changes)
	assert.Equal(t, twice.Text, thrice.Text)
	assert.Equal(t, 2, strings.Count(thrice.Text, "  - bob"+pad+"# username Not Found\n"))
}

func TestRewrite_EmptyRegionIsNoop(t *testing.T) {
	text := "    userNames:\n    - state: present\n"
	e := newTestExtractor(t)
	entries := e.Extract(text)
	require.Empty(t, entries)

	res := newTestRewriter(t).Rewrite(text, annotations())
	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Changes)
}

func TestRules_Order(t *testing.T) {
	got := Rules()
	require.Len(t, got, 4)
	assert.Equal(t, []LineState{StateBare, StateEmailOnly, StateNameOnly, StateOther},
		[]LineState{got[0].State, got[1].State, got[2].State, got[3].State})
	for _, r := range got {
		assert.NotEmpty(t, r.Reason)
		assert.True(t, strings.HasSuffix(r.Suffix, `(\r?)$`))
	}
}

func TestNewRewriter_InvalidFormat(t *testing.T) {
	_, err := NewRewriter(Format{ListKey: "x", TerminatorKey: "y", Spacing: 0})
	assert.Error(t, err)
}
