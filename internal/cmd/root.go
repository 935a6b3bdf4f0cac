// Package cmd implements the userdoc command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/config"
	"github.com/steveyegge/userdoc/internal/style"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=...".
var Version = "dev"

// Command groups
const (
	GroupRun    = "run"
	GroupConfig = "config"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "userdoc",
	Short: "Document the identifiers listed in per-project config files",
	Long: `userdoc keeps the user lists of per-project config files documented.

Every identifier in a project's userNames list gets a trailing comment with
the person's full name and email, looked up in the corporate directory.
Comments resolved in one project are reused in every other project, and each
changed project is committed and pushed for review.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRun, Title: "Run Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Setup Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

// exitError ends the process with a code after output was already printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("requires a subcommand\n\nRun '%s --help' for usage", cmd.CommandPath())
	}
	return fmt.Errorf("unknown command %q for %q\n\nRun '%s --help' for usage", args[0], cmd.CommandPath(), cmd.CommandPath())
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}
}

// loadConfig loads .env and the config file named by --config.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader(logger)
	if err := loader.LoadDotEnv(); err != nil {
		return nil, err
	}
	return loader.Load(configPath)
}

// effectiveConfigPath is the file loadConfig reads.
func effectiveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigFile
}
