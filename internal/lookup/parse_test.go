package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Details
	}{
		{
			name: "complete",
			body: successBody,
			want: Details{Name: "Bob Smith", Email: "bob@x.com", HasName: true, HasEmail: true},
		},
		{
			name: "email is not greedy",
			body: "<br>name: A<br>company: C<br>email: a@x.com<br>phone: 1<br>",
			want: Details{Name: "A", Email: "a@x.com", HasName: true, HasEmail: true},
		},
		{
			name: "html entities",
			body: "<br>name: Jos&eacute; Garc&iacute;a<br>company<br>email: jg@x.com<br>",
			want: Details{Name: "José García", Email: "jg@x.com", HasName: true, HasEmail: true},
		},
		{
			name: "decomposed accents are composed",
			body: "<br>name: Ame\u0301lie<br>company<br>email: a@x.com<br>",
			want: Details{Name: "Am\u00e9lie", Email: "a@x.com", HasName: true, HasEmail: true},
		},
		{
			name: "no fields",
			body: "<br>company: ACME<br>",
			want: Details{},
		},
		{
			name: "blank name",
			body: "<br>name:  <br>company<br>",
			want: Details{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.body)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.HasName && tt.want.HasEmail, got.Complete())
		})
	}
}

func TestMarkers_IsNonInteractive(t *testing.T) {
	m := DefaultMarkers()
	assert.True(t, m.IsNonInteractive("svc_sid_backup"))
	assert.True(t, m.IsNonInteractive("gid_deploy"))
	assert.False(t, m.IsNonInteractive("alice"))
	assert.False(t, Markers{NonInteractive: []string{""}}.IsNonInteractive("alice"))
}
