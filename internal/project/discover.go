// Package project runs the per-project pipeline over the config repository:
// read a project's config file, sync its identifiers with the run cache,
// enrich, rewrite, and hand the result to version control.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Project is one immediate subdirectory of the repository root.
type Project struct {
	// Name is the directory name, also used in commit messages.
	Name string

	// Dir is the absolute or root-relative directory path.
	Dir string

	// ConfigPath is the path of the project's config file, which may not exist.
	ConfigPath string
}

// DiscoverOptions filters project directories.
type DiscoverOptions struct {
	ConfigFile string

	// Include keeps only names matching at least one pattern. Empty keeps all.
	Include []string

	// Exclude drops names matching any pattern.
	Exclude []string
}

// Discover lists the projects under root in name order. Hidden directories
// are skipped.
func Discover(root string, opts DiscoverOptions) ([]Project, error) {
	if opts.ConfigFile == "" {
		return nil, fmt.Errorf("config file name is empty")
	}
	for _, p := range append(append([]string(nil), opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid project pattern %q", p)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var projects []Project
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !selected(e.Name(), opts) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		projects = append(projects, Project{
			Name:       e.Name(),
			Dir:        dir,
			ConfigPath: filepath.Join(dir, opts.ConfigFile),
		})
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func selected(name string, opts DiscoverOptions) bool {
	for _, p := range opts.Exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(opts.Include) == 0 {
		return true
	}
	for _, p := range opts.Include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
