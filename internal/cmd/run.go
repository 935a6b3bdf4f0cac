package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/config"
	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/metrics"
	"github.com/steveyegge/userdoc/internal/project"
	"github.com/steveyegge/userdoc/internal/slack"
	"github.com/steveyegge/userdoc/internal/user"
	"github.com/steveyegge/userdoc/internal/vcs"
	"github.com/steveyegge/userdoc/internal/workspace"
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: GroupRun,
	Short:   "Clone the config repository, document every project and push for review",
	Long: `Run the full annotation pass against the config repository.

The repository is cloned into the work directory (or an existing clone is
reset onto the remote branch). Every project directory is then processed in
name order: its identifier list is extracted, missing names and emails are
looked up, the lines are rewritten into the canonical form, and the project
is committed and pushed to the review ref.

Examples:
  userdoc run                          # Process every project
  userdoc run --project 'team-*'       # Only projects matching a glob
  userdoc run --dry-run                # Show what would change
  userdoc run --no-push                # Commit locally, do not push`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runWorkdir     string
	runBranch      string
	runDryRun      bool
	runNoPush      bool
	runProjects    []string
	runInventory   string
	runMetricsFile string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "Clone directory (overrides repository.workdir)")
	runCmd.Flags().StringVar(&runBranch, "branch", "", "Branch to clone and push for review (overrides repository.branch)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Compute changes without writing, committing or pushing")
	runCmd.Flags().BoolVar(&runNoPush, "no-push", false, "Commit each project but do not push")
	runCmd.Flags().StringArrayVar(&runProjects, "project", nil, "Only process projects matching this glob (repeatable)")
	runCmd.Flags().StringVar(&runInventory, "inventory", "", "Write the identifier inventory to this JSON file")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
}

func applyRunFlags(cfg *config.Config) {
	if runWorkdir != "" {
		cfg.Repository.Workdir = runWorkdir
	}
	if runBranch != "" {
		cfg.Repository.Branch = runBranch
	}
	if len(runProjects) > 0 {
		cfg.Repository.ProjectGlobs = runProjects
	}
	if runInventory != "" {
		cfg.Output.Inventory = runInventory
	}
	if runMetricsFile != "" {
		cfg.Output.MetricsFile = runMetricsFile
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.With("run", runID)
	notifier := slack.NewClient(&cfg.Notify.Slack, log)
	ctx := cmd.Context()

	start := time.Now()
	report, err := executeRun(ctx, cmd, cfg, runID, notifier, log)
	if err != nil {
		notifier.Notify(ctx, slack.EventRunFailed, map[string]string{
			slack.FieldRun:    runID,
			slack.FieldRepo:   vcs.RedactURL(cfg.Repository.URL),
			slack.FieldBranch: cfg.Repository.Branch,
			slack.FieldError:  err.Error(),
		})
		return err
	}

	printSummary(cmd.OutOrStdout(), report, time.Since(start))

	lookups := report.Lookups()
	notifier.Notify(ctx, slack.EventRunCompleted, map[string]string{
		slack.FieldRun:       runID,
		slack.FieldRepo:      vcs.RedactURL(cfg.Repository.URL),
		slack.FieldBranch:    cfg.Repository.Branch,
		slack.FieldProjects:  strconv.Itoa(len(report.Projects)),
		slack.FieldUpdated:   strconv.Itoa(report.Count(project.StatusUpdated)),
		slack.FieldFailed:    strconv.Itoa(report.Count(project.StatusFailed)),
		slack.FieldLookups:   strconv.Itoa(lookups.Lookups),
		slack.FieldUnmatched: strconv.Itoa(report.Unmatched()),
	})

	if report.Failed() {
		return &exitError{code: 1}
	}
	return nil
}

// executeRun does everything between config validation and the summary.
// Errors returned here abort the whole run; per-project failures end up in
// the report.
func executeRun(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runID string, notifier *slack.Client, log *slog.Logger) (project.Report, error) {
	creds, err := user.CredentialsFromEnv(cfg.Credentials.UsernameEnv, cfg.Credentials.TokenEnv)
	if err != nil {
		return project.Report{}, err
	}

	lock, err := workspace.Acquire(cfg.Repository.Workdir)
	if err != nil {
		return project.Report{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("releasing work directory lock", "err", err)
		}
	}()

	repo, err := prepareClone(ctx, cfg, creds, log)
	if err != nil {
		return project.Report{}, err
	}

	projects, err := project.Discover(repo.Dir(), project.DiscoverOptions{
		ConfigFile: cfg.Repository.ConfigFile,
		Include:    cfg.Repository.ProjectGlobs,
		Exclude:    cfg.Repository.ExcludeGlobs,
	})
	if err != nil {
		return project.Report{}, err
	}
	log.Info("discovered projects", "count", len(projects), "dir", repo.Dir())

	client, err := lookup.New(cfg.Lookup.URL, append(cfg.LookupOptions(), lookup.WithLogger(log))...)
	if err != nil {
		return project.Report{}, err
	}

	rec := metrics.New()
	author := user.DetectAuthor(cfg.Commit.AuthorName, cfg.Commit.AuthorEmail)
	log.Debug("commit author", "name", author.Name, "email", author.Email, "source", author.Source)

	cache := user.NewCache()
	pipeline, err := project.New(cache, project.Options{
		Format:          cfg.AnnotateFormat(),
		DryRun:          runDryRun,
		NoPush:          runNoPush,
		MessagePrefix:   cfg.Commit.MessagePrefix,
		Author:          author,
		ReviewRefPrefix: cfg.Repository.ReviewRefPrefix,
	},
		project.WithEnricher(lookup.NewEnricher(client, rec, log)),
		project.WithCommitter(repo),
		project.WithPublisher(repo),
		project.WithNotifier(notifier),
		project.WithReporter(newProgressReporter(cmd.OutOrStdout())),
		project.WithMetrics(rec),
		project.WithLogger(log),
	)
	if err != nil {
		return project.Report{}, err
	}

	report := pipeline.Run(ctx, projects)

	if err := writeArtifacts(cfg, runID, cache, rec, log); err != nil {
		return report, err
	}
	return report, nil
}

// prepareClone clones the repository into the work directory, or resets an
// existing clone onto the remote branch.
func prepareClone(ctx context.Context, cfg *config.Config, creds user.Credentials, log *slog.Logger) (*vcs.Repo, error) {
	dir := cfg.Repository.Workdir
	branch := cfg.Repository.Branch

	state, err := workspace.Inspect(dir)
	if err != nil {
		return nil, err
	}

	switch state {
	case workspace.StateRepository:
		repo, err := vcs.Open(dir, creds)
		if err != nil {
			return nil, err
		}
		log.Info("reusing clone", "dir", dir, "branch", branch)
		if err := repo.Sync(ctx, branch); err != nil {
			return nil, err
		}
		return repo, nil
	case workspace.StateStray:
		return nil, fmt.Errorf("%s exists and is not a git clone (run 'userdoc doctor --fix' to remove it)", dir)
	default:
		log.Info("cloning", "url", vcs.RedactURL(cfg.Repository.URL), "branch", branch, "dir", dir)
		return vcs.Clone(ctx, cfg.Repository.URL, dir, branch, creds)
	}
}

// writeArtifacts exports the inventory and metrics files when configured.
func writeArtifacts(cfg *config.Config, runID string, cache *user.Cache, rec *metrics.Recorder, log *slog.Logger) error {
	var errs []error

	if path := cfg.Output.Inventory; path != "" {
		im := user.NewInventoryManager(path)
		inv := &user.Inventory{
			RunID:      runID,
			Generated:  time.Now().UTC(),
			Identities: cache.Snapshot(),
		}
		if err := im.Save(inv); err != nil {
			errs = append(errs, fmt.Errorf("writing inventory: %w", err))
		} else {
			log.Info("wrote inventory", "path", path, "identities", len(inv.Identities))
		}
	}

	if path := cfg.Output.MetricsFile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		} else {
			log.Debug("wrote metrics", "path", path)
		}
	}

	return errors.Join(errs...)
}
