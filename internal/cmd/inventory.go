package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/userdoc/internal/style"
	"github.com/steveyegge/userdoc/internal/user"
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	GroupID: GroupConfig,
	Short:   "Inspect the identifier inventory written by the last run",
	Long: `Inspect the JSON inventory exported at the end of a run.

The inventory lists every identifier seen in the run, the comment it was
given and the projects it appears in. It is written when [output] inventory
is set or --inventory is passed to 'userdoc run'.

Examples:
  userdoc inventory list                   # Show all identifiers
  userdoc inventory list --status not-found
  userdoc inventory show jdoe              # Show one identifier`,
	RunE: requireSubcommand,
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all identifiers in the inventory",
	Args:  cobra.NoArgs,
	RunE:  runInventoryList,
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show <identifier>",
	Short: "Show one identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runInventoryShow,
}

var (
	inventoryPath   string
	inventoryStatus string
)

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryShowCmd)

	inventoryCmd.PersistentFlags().StringVar(&inventoryPath, "file", "", "Inventory file (overrides output.inventory)")
	inventoryListCmd.Flags().StringVar(&inventoryStatus, "status", "", "Only show identifiers with this status")
}

func inventoryManager() (*user.InventoryManager, error) {
	path := inventoryPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Output.Inventory
	}
	if path == "" {
		return nil, fmt.Errorf("no inventory file: set [output] inventory or pass --file")
	}
	return user.NewInventoryManager(path), nil
}

func runInventoryList(cmd *cobra.Command, args []string) error {
	im, err := inventoryManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	inv, err := im.Load()
	if err != nil {
		if errors.Is(err, user.ErrInventoryNotFound) {
			fmt.Fprintf(out, "No inventory at %s. Run 'userdoc run --inventory %s' first.\n", im.Path(), im.Path())
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "Inventory %s\n", style.Dim.Render(fmt.Sprintf("(run %s, %s)", inv.RunID, inv.Generated.Format("2006-01-02 15:04"))))
	shown := 0
	for _, id := range inv.Identities {
		if inventoryStatus != "" && string(id.Status) != inventoryStatus {
			continue
		}
		shown++

		marker := "  "
		switch id.Status {
		case user.StatusResolved:
			marker = style.SuccessPrefix + " "
		case user.StatusEmpty, user.StatusPartial:
			marker = style.WarningPrefix + " "
		}

		display := id.Username
		if id.Name != "" {
			display += fmt.Sprintf(" (%s)", id.Name)
		}
		if id.Email != "" {
			display += fmt.Sprintf(" <%s>", id.Email)
		}
		if id.Name == "" && id.Email == "" && id.Comment != "" {
			display += " " + style.Dim.Render(id.Comment)
		}
		fmt.Fprintf(out, "  %s%s\n", marker, display)
	}

	if shown == 0 {
		fmt.Fprintln(out, style.Dim.Render("  (no identifiers)"))
	}
	return nil
}

func runInventoryShow(cmd *cobra.Command, args []string) error {
	im, err := inventoryManager()
	if err != nil {
		return err
	}

	id, err := im.Get(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", style.Bold.Render("Identifier:"), id.Username)
	if id.Name != "" {
		fmt.Fprintf(out, "  Name:     %s\n", id.Name)
	}
	if id.Email != "" {
		fmt.Fprintf(out, "  Email:    %s\n", id.Email)
	}
	fmt.Fprintf(out, "  Comment:  %s\n", id.Comment)
	fmt.Fprintf(out, "  Status:   %s %s\n", id.Status, style.Dim.Render("("+string(id.Kind)+")"))
	fmt.Fprintf(out, "  Projects: %s\n", strings.Join(id.Projects, ", "))
	return nil
}
