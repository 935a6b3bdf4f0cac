package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/lookup"
	"github.com/steveyegge/userdoc/internal/style"
	"github.com/steveyegge/userdoc/internal/user"
)

var lookupCmd = &cobra.Command{
	Use:     "lookup <identifier>...",
	GroupID: GroupRun,
	Short:   "Resolve identifiers against the lookup endpoint",
	Long: `Look identifiers up in the corporate directory and print the comment
a run would write next to each of them.

Examples:
  userdoc lookup jdoe
  userdoc lookup jdoe svc_sid_backup --timeout 3s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var (
	lookupURL     string
	lookupTimeout string
)

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupURL, "url", "", "Lookup endpoint (overrides lookup.url)")
	lookupCmd.Flags().StringVar(&lookupTimeout, "timeout", "", "Per-identifier deadline, e.g. 10s (overrides lookup.timeout)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if lookupURL != "" {
		cfg.Lookup.URL = lookupURL
	}
	if lookupTimeout != "" {
		if err := cfg.Lookup.Timeout.UnmarshalText([]byte(lookupTimeout)); err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
	}
	if cfg.Lookup.URL == "" {
		return fmt.Errorf("no lookup endpoint: set [lookup] url or pass --url")
	}

	client, err := lookup.New(cfg.Lookup.URL, append(cfg.LookupOptions(), lookup.WithLogger(logger))...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	width := 0
	for _, id := range args {
		width = max(width, len(id))
	}

	failed := 0
	for _, id := range args {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		res := client.Resolve(cmd.Context(), id)
		comment, ok := outcomeComment(res)
		padded := fmt.Sprintf("%-*s", width, id)

		if !ok {
			failed++
			reason := res.Outcome.String()
			if res.LastErr != nil {
				reason += ": " + res.LastErr.Error()
			}
			fmt.Fprintf(out, "%s %s  %s\n", style.WarningPrefix, padded, style.Dim.Render(reason))
			continue
		}
		fmt.Fprintf(out, "%s %s  %s %s\n", style.SuccessPrefix, style.Bold.Render(padded), comment,
			style.Dim.Render(fmt.Sprintf("(%d attempts, %s)", res.Attempts, res.Elapsed.Round(time.Millisecond))))
	}

	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// outcomeComment returns the comment a run writes for a lookup result.
func outcomeComment(res lookup.Result) (string, bool) {
	switch res.Outcome {
	case lookup.OutcomeResolved:
		return user.FormatComment(res.Name, res.Email), true
	case lookup.OutcomeNotFound:
		return user.NotFoundComment, true
	case lookup.OutcomeNonInteractive:
		return user.NonInteractiveComment, true
	default:
		return "", false
	}
}
