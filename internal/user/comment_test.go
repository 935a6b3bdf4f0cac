package user

import (
	"testing"
)

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"bob-old-comment", "# bob-old-comment"},
		{"  Carol, Jones - carol@example.com ", "# Carol, Jones - carol@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeComment(tt.raw); got != tt.want {
			t.Errorf("NormalizeComment(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNeedsEnrichment(t *testing.T) {
	tests := []struct {
		comment string
		want    bool
	}{
		{"", true},
		{"# bob-old-comment", true},
		{"# bob@x.com", true},
		{"# Smith, Bob", true},
		{"# Bob Smith - bob@x.com", true},
		{"# Carol, Jones - carol@example.com", false},
		{NotFoundComment, true},
		{NonInteractiveComment, true},
	}

	for _, tt := range tests {
		if got := NeedsEnrichment(tt.comment); got != tt.want {
			t.Errorf("NeedsEnrichment(%q) = %v, want %v", tt.comment, got, tt.want)
		}
	}
}

func TestParseComment(t *testing.T) {
	tests := []struct {
		comment string
		want    CommentParts
	}{
		{"", CommentParts{}},
		{NotFoundComment, CommentParts{}},
		{NonInteractiveComment, CommentParts{}},
		{"# Bob Smith - bob@x.com", CommentParts{Name: "Bob Smith", Email: "bob@x.com", HasName: true, HasEmail: true}},
		{"# Jones, Carol - carol@example.com", CommentParts{Name: "Jones, Carol", Email: "carol@example.com", HasName: true, HasEmail: true}},
		{"# bob@x.com", CommentParts{Email: "bob@x.com", HasEmail: true}},
		{"# Smith, Bob", CommentParts{Name: "Smith, Bob", HasName: true}},
		{"# build - release", CommentParts{Name: "build - release", HasName: true}},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			if got := ParseComment(tt.comment); got != tt.want {
				t.Errorf("ParseComment(%q) = %+v, want %+v", tt.comment, got, tt.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		comment string
		want    Status
	}{
		{"", StatusEmpty},
		{NotFoundComment, StatusNotFound},
		{NonInteractiveComment, StatusNonInteractive},
		{FormatComment("Bob Smith", "bob@x.com"), StatusResolved},
		{"# old note", StatusPartial},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.comment); got != tt.want {
			t.Errorf("StatusOf(%q) = %q, want %q", tt.comment, got, tt.want)
		}
	}
}
