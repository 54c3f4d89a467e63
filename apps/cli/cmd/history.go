package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/apiprobe/packages/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs recorded with --history",
	Long: `Show recent runs recorded in a history database.

Examples:
  apiprobe --history runs.db
  apiprobe history --db runs.db
  apiprobe history --db runs.db --limit 20`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", "", "History database (default: history from the config file)")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 10, "Number of runs to show, 0 for all")
	historyCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file (default: apiprobe.yaml in the working directory)")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	path := historyDBFlag
	if path == "" {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		path = cfg.History
	}
	if path == "" {
		return fmt.Errorf("no history database given (use --db or set history in the config file)")
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded in %s\n", path)
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range runs {
		status := green("PASS")
		if r.Failed > 0 || r.Passed == 0 {
			status = red("FAIL")
		}
		fmt.Fprintf(out, "#%-4d %s  %s  %s  %d/%d passed  %dms\n",
			r.ID, status, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.BaseURL,
			r.Passed, r.Passed+r.Failed, r.Duration.Milliseconds())
		for _, c := range r.Checks {
			if !c.Passed {
				fmt.Fprintf(out, "        %s %s: %s\n", red("✗"), c.Name, c.Error)
			}
		}
	}
	return nil
}
