package project

import (
	"github.com/steveyegge/userdoc/internal/lookup"
)

// Report collects the results of a run in processing order.
type Report struct {
	Projects []Result
	// Known is the number of distinct identifiers in the metadata cache
	// once the run finished.
	Known int
}

// Count returns how many projects ended with status.
func (r Report) Count(status Status) int {
	n := 0
	for _, res := range r.Projects {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Lookups sums the lookups of every project.
func (r Report) Lookups() lookup.Summary {
	var sum lookup.Summary
	for _, res := range r.Projects {
		sum.Add(res.Lookups)
	}
	return sum
}

// Unmatched returns the number of unrecognized identifier lines.
func (r Report) Unmatched() int {
	n := 0
	for _, res := range r.Projects {
		n += len(res.Unmatched)
	}
	return n
}

// Changed lists the names of updated projects.
func (r Report) Changed() []string {
	var names []string
	for _, res := range r.Projects {
		if res.Status == StatusUpdated {
			names = append(names, res.Project.Name)
		}
	}
	return names
}

// Failed reports whether any project failed.
func (r Report) Failed() bool {
	return r.Count(StatusFailed) > 0
}
