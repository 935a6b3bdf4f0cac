// Package vcs wraps the git operations of a run: clone the config
// repository, commit one project at a time and push for review.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/steveyegge/userdoc/internal/user"
)

// DefaultRemote is the remote a clone pushes to.
const DefaultRemote = "origin"

var (
	// ErrNothingToCommit indicates the project has no pending changes.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrAuthentication indicates the remote rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")
)

// Repo is a local clone of the config repository.
type Repo struct {
	repo *git.Repository
	dir  string
	auth transport.AuthMethod
}

// authFor returns basic auth for http(s) remotes. Other transports use
// their own defaults (ssh agent, local files).
func authFor(rawURL string, creds user.Credentials) transport.AuthMethod {
	if creds.IsZero() {
		return nil
	}
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil || (ep.Protocol != "http" && ep.Protocol != "https") {
		return nil
	}
	return &githttp.BasicAuth{Username: creds.Username, Password: creds.Token}
}

// Clone clones branch of rawURL into dir.
func Clone(ctx context.Context, rawURL, dir, branch string, creds user.Credentials) (*Repo, error) {
	auth := authFor(rawURL, creds)
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           rawURL,
		Auth:          auth,
		RemoteName:    DefaultRemote,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", RedactURL(rawURL), classify(err))
	}
	return &Repo{repo: repo, dir: dir, auth: auth}, nil
}

// Open opens an existing clone.
func Open(dir string, creds user.Credentials) (*Repo, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", dir, err)
	}
	r := &Repo{repo: repo, dir: dir}
	if remote, err := r.RemoteURL(); err == nil {
		r.auth = authFor(remote, creds)
	}
	return r, nil
}

// Dir returns the work tree root.
func (r *Repo) Dir() string { return r.dir }

// Branch returns the short name of the checked out branch.
func (r *Repo) Branch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}
	return head.Name().Short(), nil
}

// RemoteURL returns the first URL of the default remote.
func (r *Repo) RemoteURL() (string, error) {
	remote, err := r.repo.Remote(DefaultRemote)
	if err != nil {
		return "", fmt.Errorf("reading remote %s: %w", DefaultRemote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no url", DefaultRemote)
	}
	return urls[0], nil
}

// CommitProject stages everything below the project directory and commits
// it. It returns ErrNothingToCommit when the project has no changes.
func (r *Repo) CommitProject(ctx context.Context, project, message string, author user.Author) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("reading status: %w", err)
	}
	if !projectChanged(status, project) {
		return "", fmt.Errorf("%w: %s", ErrNothingToCommit, project)
	}

	if err := wt.AddWithOptions(&git.AddOptions{Path: project}); err != nil {
		return "", fmt.Errorf("staging %s: %w", project, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("committing %s: %w", project, err)
	}
	return hash.String(), nil
}

// projectChanged reports whether status has a change below project.
func projectChanged(status git.Status, project string) bool {
	prefix := path.Clean(project) + "/"
	for file, s := range status {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			return true
		}
	}
	return false
}

// ReviewRef returns the ref a branch is pushed to for review.
func ReviewRef(prefix, branch string) string {
	return prefix + branch
}

// Push pushes the current branch to prefix+branch on the default remote and
// returns the target ref. An up-to-date remote is not an error.
func (r *Repo) Push(ctx context.Context, prefix string) (string, error) {
	branch, err := r.Branch()
	if err != nil {
		return "", err
	}

	target := ReviewRef(prefix, branch)
	spec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", plumbing.NewBranchReferenceName(branch), target))
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("invalid refspec %s: %w", spec, err)
	}

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: DefaultRemote,
		RefSpecs:   []gitconfig.RefSpec{spec},
		Auth:       r.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("pushing to %s: %w", target, classify(err))
	}
	return target, nil
}

// Sync fetches branch from the default remote and hard-resets the work tree
// onto it. Local commits and edits left by an earlier run are discarded.
func (r *Repo) Sync(ctx context.Context, branch string) error {
	local := plumbing.NewBranchReferenceName(branch)
	tracking := plumbing.NewRemoteReferenceName(DefaultRemote, branch)
	spec := gitconfig.RefSpec(fmt.Sprintf("+%s:%s", local, tracking))

	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: DefaultRemote,
		RefSpecs:   []gitconfig.RefSpec{spec},
		Auth:       r.auth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", branch, classify(err))
	}

	ref, err := r.repo.Reference(tracking, true)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", tracking, err)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(local, ref.Hash())); err != nil {
		return fmt.Errorf("updating %s: %w", local, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", branch, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: ref.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("resetting to %s: %w", ref.Hash(), err)
	}
	return nil
}

// classify maps transport authentication failures onto ErrAuthentication.
func classify(err error) error {
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return err
}

// RedactURL removes any password from a URL before it is logged.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

// ValidateRemoteURL checks that rawURL is something git can clone over the
// network.
func ValidateRemoteURL(rawURL string) error {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return fmt.Errorf("parsing remote url: %w", err)
	}
	switch ep.Protocol {
	case "https", "http", "ssh":
		return nil
	default:
		return fmt.Errorf("unsupported remote protocol %q", ep.Protocol)
	}
}
