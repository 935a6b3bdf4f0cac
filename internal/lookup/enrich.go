package lookup

import (
	"context"
	"log/slog"

	"github.com/steveyegge/userdoc/internal/metrics"
	"github.com/steveyegge/userdoc/internal/user"
)

// Resolver resolves a single identifier. *Client implements it.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) Result
}

// Summary counts the lookups performed for one project.
type Summary struct {
	Lookups        int
	Resolved       int
	NotFound       int
	NonInteractive int
	Unparsed       int
	Unresolved     int
}

// Add folds another summary into s.
func (s *Summary) Add(o Summary) {
	s.Lookups += o.Lookups
	s.Resolved += o.Resolved
	s.NotFound += o.NotFound
	s.NonInteractive += o.NonInteractive
	s.Unparsed += o.Unparsed
	s.Unresolved += o.Unresolved
}

// Enricher fills in missing comments of a project view.
type Enricher struct {
	resolver Resolver
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewEnricher creates an enricher. rec and logger may be nil.
func NewEnricher(resolver Resolver, rec *metrics.Recorder, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{resolver: resolver, metrics: rec, logger: logger}
}

// Enrich looks up every identifier of view whose comment lacks an email or a
// full name. An identifier is looked up at most once per run; later projects
// reuse whatever the first lookup produced. Each outcome is written through
// the view so the cache sees it too.
func (e *Enricher) Enrich(ctx context.Context, view *user.View) Summary {
	var sum Summary
	logger := e.logger.With("project", view.Project())

	for _, id := range view.Identifiers() {
		if !user.NeedsEnrichment(view.Comment(id)) || view.Attempted(id) {
			continue
		}
		view.MarkAttempted(id)

		res := e.resolver.Resolve(ctx, id)
		sum.Lookups++
		e.metrics.Lookup(res.Outcome.String(), res.Attempts, res.Elapsed)

		switch res.Outcome {
		case OutcomeResolved:
			sum.Resolved++
			view.Set(id, user.FormatComment(res.Name, res.Email))
			logger.Debug("identifier resolved", "identifier", id, "attempts", res.Attempts)
		case OutcomeNotFound:
			sum.NotFound++
			view.Set(id, user.NotFoundComment)
			logger.Info("identifier not found", "identifier", id)
		case OutcomeNonInteractive:
			sum.NonInteractive++
			view.Set(id, user.NonInteractiveComment)
			logger.Debug("identifier is non-interactive", "identifier", id)
		case OutcomeUnparsed:
			sum.Unparsed++
			logger.Warn("lookup response missing name or email", "identifier", id,
				"name", res.Name, "email", res.Email)
		default:
			sum.Unresolved++
			logger.Warn("lookup unresolved", "identifier", id,
				"attempts", res.Attempts, "elapsed", res.Elapsed, "err", res.LastErr)
		}
	}

	return sum
}
