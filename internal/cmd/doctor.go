package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/config"
	"github.com/steveyegge/userdoc/internal/doctor"
	"github.com/steveyegge/userdoc/internal/style"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupConfig,
	Short:   "Check that a run has everything it needs",
	Long: `Check the config file, credentials, lookup endpoint, repository URL and
work directory before a run.

With --fix, problems that can be repaired automatically are fixed. Today
that is a work directory that exists but is not a git clone: it is removed
so the next run can clone into it.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFix bool

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt to fix problems")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := &doctor.CheckContext{ConfigPath: effectiveConfigPath()}

	cfg, err := loadConfig()
	if err != nil {
		ctx.ConfigErr = err
		cfg = config.DefaultConfig()
	}
	ctx.Config = cfg

	d := doctor.New(doctor.DefaultChecks()...)
	var report *doctor.Report
	if doctorFix {
		report = d.Fix(ctx)
	} else {
		report = d.Run(ctx)
	}

	printDoctorReport(cmd.OutOrStdout(), report)
	if report.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}

func printDoctorReport(w io.Writer, report *doctor.Report) {
	for _, res := range report.Results {
		prefix := style.SuccessPrefix
		switch res.Status {
		case doctor.StatusWarning:
			prefix = style.WarningPrefix
		case doctor.StatusError:
			prefix = style.ErrorPrefix
		}

		line := fmt.Sprintf("%s %s %s", prefix, style.Bold.Render(res.Name+":"), res.Message)
		if res.Fixed {
			line += " " + style.Success.Render("(fixed)")
		}
		fmt.Fprintln(w, line)

		for _, d := range res.Details {
			fmt.Fprintf(w, "    %s\n", style.Dim.Render(d))
		}
		if res.FixHint != "" && res.Status != doctor.StatusOK {
			fmt.Fprintf(w, "    %s %s\n", style.ArrowPrefix, res.FixHint)
		}
	}

	fmt.Fprintf(w, "\n%s  %s  %s\n",
		style.Tally("ok", report.Count(doctor.StatusOK), style.Success),
		style.Tally("warnings", report.Count(doctor.StatusWarning), style.Warning),
		style.Tally("errors", report.Count(doctor.StatusError), style.Error))
}
