package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/project"
	"github.com/steveyegge/userdoc/internal/style"
	"github.com/steveyegge/userdoc/internal/user"
)

var scanCmd = &cobra.Command{
	Use:     "scan <dir>",
	GroupID: GroupRun,
	Short:   "Annotate the projects of a local directory tree",
	Long: `Run the annotation pass over an existing directory tree.

Each immediate subdirectory of <dir> is a project. Files are rewritten in
place; nothing is committed or pushed. Lookups are performed when
[lookup] url is configured, unless --no-lookup is given.

With --check nothing is written: the command lists the projects that would
change and exits with status 1 if there are any.

Examples:
  userdoc scan ./config_repository
  userdoc scan --check --no-lookup .    # CI: fail on undocumented lines`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var (
	scanCheck    bool
	scanNoLookup bool
	scanProjects []string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanCheck, "check", false, "Report projects that would change and exit 1 if any")
	scanCmd.Flags().BoolVar(&scanNoLookup, "no-lookup", false, "Do not query the lookup endpoint")
	scanCmd.Flags().StringArrayVar(&scanProjects, "project", nil, "Only process projects matching this glob (repeatable)")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(scanProjects) > 0 {
		cfg.Repository.ProjectGlobs = scanProjects
	}

	projects, err := project.Discover(root, project.DiscoverOptions{
		ConfigFile: cfg.Repository.ConfigFile,
		Include:    cfg.Repository.ProjectGlobs,
		Exclude:    cfg.Repository.ExcludeGlobs,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	options := []project.Option{
		project.WithLogger(logger),
		project.WithReporter(newProgressReporter(out)),
	}

	switch {
	case scanNoLookup:
	case cfg.Lookup.URL == "":
		logger.Info("lookup.url not set, comments will not be enriched")
	default:
		client, err := lookup.New(cfg.Lookup.URL, append(cfg.LookupOptions(), lookup.WithLogger(logger))...)
		if err != nil {
			return err
		}
		options = append(options, project.WithEnricher(lookup.NewEnricher(client, nil, logger)))
	}

	pipeline, err := project.New(user.NewCache(), project.Options{
		Format: cfg.AnnotateFormat(),
		DryRun: scanCheck,
	}, options...)
	if err != nil {
		return err
	}

	start := time.Now()
	report := pipeline.Run(cmd.Context(), projects)
	printSummary(out, report, time.Since(start))

	if scanCheck {
		if changed := report.Changed(); len(changed) > 0 {
			fmt.Fprintf(out, "%s %d projects need annotation\n", style.WarningPrefix, len(changed))
			return &exitError{code: 1}
		}
		fmt.Fprintf(out, "%s all projects are annotated\n", style.SuccessPrefix)
	}
	if report.Failed() {
		return &exitError{code: 1}
	}
	return nil
}
