package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks in run order",
	Args:  cobra.NoArgs,
	RunE:  listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	for i, c := range checks.Default() {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %-14s %s\n", i+1, c.Name, c.Description)
	}
	return nil
}
