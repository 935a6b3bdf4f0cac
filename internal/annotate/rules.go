package annotate

import (
	"regexp"
)

// LineState classifies the annotation state of an identifier's line.
type LineState int

const (
	// StateNoMatch means no line for the identifier was recognized.
	StateNoMatch LineState = iota
	// StateBare is `- id` with no comment.
	StateBare
	// StateEmailOnly is `- id # ...@...`.
	StateEmailOnly
	// StateNameOnly is `- id # ...,...`.
	StateNameOnly
	// StateOther is `- id # anything else`.
	StateOther
)

func (s LineState) String() string {
	switch s {
	case StateBare:
		return "bare"
	case StateEmailOnly:
		return "email-only"
	case StateNameOnly:
		return "name-only"
	case StateOther:
		return "other"
	default:
		return "no-match"
	}
}

// Rule is one entry of the ordered classification table.
type Rule struct {
	State  LineState
	Reason string

	// Suffix is the pattern that follows the identifier on the line. It must
	// end with a `(\r?)$` group so carriage returns survive a rewrite.
	Suffix string
}

// linePrefix captures the indentation and list hyphen in front of an identifier.
const linePrefix = `(?m)^([ \t]*-[ \t]+)`

// rules is evaluated top to bottom; the first rule that matches anywhere in
// the text decides the state. A bare line must win over every commented form.
var rules = []Rule{
	{
		State:  StateBare,
		Reason: "identifier without any comment",
		Suffix: `[ \t]*(\r?)$`,
	},
	{
		State:  StateEmailOnly,
		Reason: "comment with an email address",
		Suffix: `[ \t]*#[^\r\n]*@[^\r\n]*(\r?)$`,
	},
	{
		State:  StateNameOnly,
		Reason: "comment with a full name",
		Suffix: `[ \t]*#[^\r\n]*,[^\r\n]*(\r?)$`,
	},
	{
		State:  StateOther,
		Reason: "any other comment",
		Suffix: `[ \t]*#[^\r\n]*(\r?)$`,
	},
}

// Rules returns a copy of the classification table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// compiledRule pairs a rule with its identifier-specific pattern.
type compiledRule struct {
	state LineState
	re    *regexp.Regexp
}

func compileRules(identifier string) []compiledRule {
	quoted := regexp.QuoteMeta(identifier)
	out := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, compiledRule{
			state: rule.State,
			re:    regexp.MustCompile(linePrefix + quoted + rule.Suffix),
		})
	}
	return out
}

// classify returns the first rule matching text, or nil.
func classify(text string, compiled []compiledRule) *compiledRule {
	for i := range compiled {
		if compiled[i].re.MatchString(text) {
			return &compiled[i]
		}
	}
	return nil
}

// Classify reports the annotation state of identifier's line in text.
func Classify(text, identifier string) LineState {
	if rule := classify(text, compileRules(identifier)); rule != nil {
		return rule.state
	}
	return StateNoMatch
}
