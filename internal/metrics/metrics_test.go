package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.Lookup("resolved", 3, 200*time.Millisecond)
	r.Lookup("not-found", 1, 10*time.Millisecond)
	r.Lookup("resolved", 1, 10*time.Millisecond)
	r.Project("updated")
	r.Project("skipped")
	r.LinesRewritten("bare", 2)
	r.LinesRewritten("other", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.lookups.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lookups.WithLabelValues("not-found")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.attempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.projects.WithLabelValues("updated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lines.WithLabelValues("bare")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.lookupDuration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.Lookup("resolved", 1, time.Second)
	r.Project("updated")
	r.LinesRewritten("bare", 1)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Project("updated")

	path := filepath.Join(t.TempDir(), "textfile", "userdoc.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `userdoc_projects_total{status="updated"} 1`))
}
