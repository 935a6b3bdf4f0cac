package annotate

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultPatternCacheSize = 4096

// Annotations supplies the resolved comment of every identifier of a project,
// in the order the identifiers were first seen.
type Annotations interface {
	Identifiers() []string
	Comment(identifier string) string
}

// Change records how one identifier's lines were rewritten. Lines counts the
// lines the winning rule matched.
type Change struct {
	Identifier string
	State      LineState
	Lines      int
}

// Result is the outcome of a rewrite.
type Result struct {
	Text      string
	Changes   []Change
	Unmatched []string
}

// Rewriter normalizes identifier lines into the canonical annotated form.
// It performs no I/O.
type Rewriter struct {
	format   Format
	compiled *lru.Cache[string, []compiledRule]
}

// NewRewriter creates a rewriter for the given format.
func NewRewriter(f Format) (*Rewriter, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, []compiledRule](defaultPatternCacheSize)
	if err != nil {
		return nil, err
	}
	return &Rewriter{format: f, compiled: cache}, nil
}

// Rewrite replaces the lines of every identifier in annotations with the
// canonical form. For each identifier the first matching rule wins and all
// of its occurrences are replaced in one pass. Identifiers whose lines are
// already canonical produce no Change. Identifiers with no matching line are
// reported in Result.Unmatched and leave text untouched.
//
// Rewriting the output again with the same annotations returns identical text
// as long as every line of an identifier shares one form. When an identifier
// appears in several forms (bare in one region, commented in another) only the
// form of the first matching rule is replaced, and a later pass rewrites the
// next one.
func (r *Rewriter) Rewrite(text string, annotations Annotations) Result {
	result := Result{Text: text}

	for _, id := range annotations.Identifiers() {
		rule := classify(result.Text, r.rulesFor(id))
		if rule == nil {
			result.Unmatched = append(result.Unmatched, id)
			continue
		}

		canonical := r.format.Canonical(id, annotations.Comment(id))
		replacement := "${1}" + escapeTemplate(canonical) + "${2}"
		rewritten := rule.re.ReplaceAllString(result.Text, replacement)
		if rewritten == result.Text {
			continue
		}
		lines := len(rule.re.FindAllStringIndex(result.Text, -1))
		result.Text = rewritten
		result.Changes = append(result.Changes, Change{
			Identifier: id,
			State:      rule.state,
			Lines:      lines,
		})
	}

	return result
}

func (r *Rewriter) rulesFor(identifier string) []compiledRule {
	if compiled, ok := r.compiled.Get(identifier); ok {
		return compiled
	}
	compiled := compileRules(identifier)
	r.compiled.Add(identifier, compiled)
	return compiled
}

// escapeTemplate protects `$` in literal text used in a regexp template.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
