package lookup

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	namePattern  = regexp.MustCompile(`<br>name:\s(.*?)<br>company`)
	emailPattern = regexp.MustCompile(`<br>email:\s(.*?)<br>`)
)

// Details is the person information found in a lookup response. Either part
// may be absent.
type Details struct {
	Name     string
	Email    string
	HasName  bool
	HasEmail bool
}

// Complete reports whether both name and email were found.
func (d Details) Complete() bool { return d.HasName && d.HasEmail }

// ParseResponse extracts the name and email fields of a successful lookup.
// Names are unescaped and NFC-normalized.
func ParseResponse(body string) Details {
	var d Details
	if m := namePattern.FindStringSubmatch(body); m != nil {
		if name := cleanField(m[1]); name != "" {
			d.Name = norm.NFC.String(name)
			d.HasName = true
		}
	}
	if m := emailPattern.FindStringSubmatch(body); m != nil {
		if email := cleanField(m[1]); email != "" {
			d.Email = email
			d.HasEmail = true
		}
	}
	return d
}

func cleanField(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
