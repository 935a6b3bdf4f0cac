package annotate

import (
	"regexp"
	"strings"
)

// Entry is one identifier line found inside a list region.
type Entry struct {
	// Identifier is the line with its comment, whitespace and list hyphen removed.
	Identifier string

	// Line is the raw line as it appears in the file.
	Line string

	// Comment is the text after the first `#`, trimmed. Empty when HasComment
	// is false or the comment is blank.
	Comment string

	// HasComment reports whether the line carried a `#` at all.
	HasComment bool
}

// Extractor finds identifier entries in config file text.
type Extractor struct {
	region *regexp.Regexp
}

// NewExtractor compiles an extractor for the given format.
func NewExtractor(f Format) (*Extractor, error) {
	re, err := f.regionPattern()
	if err != nil {
		return nil, err
	}
	return &Extractor{region: re}, nil
}

// Extract returns the entries of every list region in text, in first-seen
// order. Repeated identifiers keep their first entry. Text without a list
// region yields no entries.
func (e *Extractor) Extract(text string) []Entry {
	var entries []Entry
	seen := make(map[string]bool)

	for _, match := range e.region.FindAllStringSubmatch(text, -1) {
		for _, line := range strings.Split(match[1], "\n") {
			entry, ok := parseLine(line)
			if !ok || seen[entry.Identifier] {
				continue
			}
			seen[entry.Identifier] = true
			entries = append(entries, entry)
		}
	}

	return entries
}

// parseLine turns a raw region line into an entry. Blank lines and lines that
// hold only a comment are rejected.
func parseLine(line string) (Entry, bool) {
	if strings.TrimSpace(line) == "" {
		return Entry{}, false
	}

	before, after, hasComment := strings.Cut(line, "#")
	id := strings.TrimSpace(before)
	id = strings.TrimSpace(strings.TrimPrefix(id, "-"))
	if id == "" {
		return Entry{}, false
	}

	return Entry{
		Identifier: id,
		Line:       strings.TrimRight(line, "\r"),
		Comment:    strings.TrimSpace(after),
		HasComment: hasComment,
	}, true
}
