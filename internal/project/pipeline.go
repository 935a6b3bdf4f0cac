package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/steveyegge/userdoc/internal/annotate"
	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/metrics"
	"github.com/steveyegge/userdoc/internal/slack"
	"github.com/steveyegge/userdoc/internal/user"
	"github.com/steveyegge/userdoc/internal/vcs"
)

// ErrConfigAbsent indicates a project directory has no config file.
var ErrConfigAbsent = errors.New("config file not found")

// Status is the final state of one project.
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Committer records a project's changes.
type Committer interface {
	CommitProject(ctx context.Context, project, message string, author user.Author) (string, error)
}

// Publisher pushes committed changes for review.
type Publisher interface {
	Push(ctx context.Context, refPrefix string) (string, error)
}

// Enricher fills in missing comments of a project view.
type Enricher interface {
	Enrich(ctx context.Context, view *user.View) lookup.Summary
}

// Notifier announces submitted projects.
type Notifier interface {
	Notify(ctx context.Context, event slack.EventType, fields map[string]string)
}

// Reporter receives progress as projects are processed.
type Reporter interface {
	ProjectStarted(index, total int, p Project)
	ProjectFinished(res Result)
}

// Result is the outcome of one project.
type Result struct {
	Project     Project
	Status      Status
	Identifiers int
	Changes     []annotate.Change
	Unmatched   []string
	Lookups     lookup.Summary
	Commit      string
	Ref         string
	DryRun      bool
	Err         error
}

// Lines returns the number of rewritten lines.
func (r Result) Lines() int {
	n := 0
	for _, c := range r.Changes {
		n += c.Lines
	}
	return n
}

// Options control what the pipeline does with a rewritten file.
type Options struct {
	Format annotate.Format

	// DryRun computes rewrites without writing, committing or pushing.
	DryRun bool

	// NoPush commits without pushing.
	NoPush bool

	// MessagePrefix is prepended to the project name in commit messages.
	MessagePrefix string

	Author          user.Author
	ReviewRefPrefix string
}

// Pipeline processes projects one at a time, sharing a single cache.
type Pipeline struct {
	opts      Options
	extractor *annotate.Extractor
	rewriter  *annotate.Rewriter
	cache     *user.Cache

	enricher  Enricher
	committer Committer
	publisher Publisher
	notifier  Notifier
	reporter  Reporter
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// Option wires an optional collaborator into the pipeline.
type Option func(*Pipeline)

// WithEnricher enables lookups for incomplete comments.
func WithEnricher(e Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithCommitter enables a commit per changed project.
func WithCommitter(c Committer) Option {
	return func(p *Pipeline) { p.committer = c }
}

// WithPublisher enables a push after each commit.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithNotifier announces every pushed project.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// WithMetrics records project and line counts.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline around cache.
func New(cache *user.Cache, opts Options, options ...Option) (*Pipeline, error) {
	extractor, err := annotate.NewExtractor(opts.Format)
	if err != nil {
		return nil, err
	}
	rewriter, err := annotate.NewRewriter(opts.Format)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		opts:      opts,
		extractor: extractor,
		rewriter:  rewriter,
		cache:     cache,
		logger:    slog.Default(),
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Run processes projects strictly in order. Per-project failures are recorded
// in the report and never stop the run.
func (p *Pipeline) Run(ctx context.Context, projects []Project) Report {
	report := Report{Projects: make([]Result, 0, len(projects))}

	for i, proj := range projects {
		if p.reporter != nil {
			p.reporter.ProjectStarted(i+1, len(projects), proj)
		}

		res := p.process(ctx, proj)
		p.metrics.Project(string(res.Status))

		if p.reporter != nil {
			p.reporter.ProjectFinished(res)
		}
		report.Projects = append(report.Projects, res)
	}

	report.Known = p.cache.Len()
	return report
}

func (p *Pipeline) process(ctx context.Context, proj Project) Result {
	res := Result{Project: proj, DryRun: p.opts.DryRun}
	logger := p.logger.With("project", proj.Name)

	data, err := os.ReadFile(proj.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config not found, skipping", "path", proj.ConfigPath)
			res.Status = StatusSkipped
			res.Err = fmt.Errorf("%w: %s", ErrConfigAbsent, proj.ConfigPath)
			return res
		}
		return p.fail(logger, res, fmt.Errorf("reading config: %w", err))
	}
	text := string(data)

	entries := p.extractor.Extract(text)
	if len(entries) == 0 {
		logger.Debug("no identifier list found")
		res.Status = StatusUnchanged
		return res
	}

	view := p.cache.Sync(proj.Name, entries)
	res.Identifiers = view.Len()
	if p.enricher != nil {
		res.Lookups = p.enricher.Enrich(ctx, view)
	}

	rewritten := p.rewriter.Rewrite(text, view)
	res.Changes = rewritten.Changes
	res.Unmatched = rewritten.Unmatched
	for _, id := range rewritten.Unmatched {
		logger.Warn("identifier line not recognized", "identifier", id)
	}

	if rewritten.Text == text {
		res.Status = StatusUnchanged
		return res
	}

	if err := checkYAML(text, rewritten.Text); err != nil {
		return p.fail(logger, res, err)
	}

	if p.opts.DryRun {
		logger.Info("would rewrite config", "lines", res.Lines())
		res.Status = StatusUpdated
		return res
	}

	if _, err := writeIfChanged(proj.ConfigPath, []byte(rewritten.Text)); err != nil {
		return p.fail(logger, res, fmt.Errorf("writing config: %w", err))
	}
	for _, c := range res.Changes {
		p.metrics.LinesRewritten(c.State.String(), c.Lines)
	}

	if p.committer != nil {
		hash, err := p.committer.CommitProject(ctx, proj.Name, p.opts.MessagePrefix+proj.Name, p.opts.Author)
		if errors.Is(err, vcs.ErrNothingToCommit) {
			res.Status = StatusUnchanged
			return res
		}
		if err != nil {
			return p.fail(logger, res, err)
		}
		res.Commit = hash
		logger.Debug("committed", "commit", hash)

		if p.publisher != nil && !p.opts.NoPush {
			ref, err := p.publisher.Push(ctx, p.opts.ReviewRefPrefix)
			if err != nil {
				return p.fail(logger, res, err)
			}
			res.Ref = ref
			logger.Info("pushed for review", "ref", ref)
			if p.notifier != nil {
				p.notifier.Notify(ctx, slack.EventProjectSubmitted, map[string]string{
					slack.FieldProject: proj.Name,
					slack.FieldRef:     ref,
					slack.FieldCommit:  hash,
					slack.FieldUpdated: strconv.Itoa(res.Lines()),
				})
			}
		}
	}

	res.Status = StatusUpdated
	return res
}

func (p *Pipeline) fail(logger *slog.Logger, res Result, err error) Result {
	logger.Error("project failed", "err", err)
	res.Status = StatusFailed
	res.Err = err
	return res
}
