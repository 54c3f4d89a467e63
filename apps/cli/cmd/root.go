package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "apiprobe",
	Short: "Smoke-test a backend's status API.",
	Long: `apiprobe resolves a backend URL from an env file and runs a fixed,
ordered set of checks against its HTTP API:

  1. GET  /api/        greets with "Hello World"
  2. POST /api/status  creates a status check
  3. GET  /api/status  lists status checks

Every check runs even when an earlier one fails. The exit code is 0 only
when all checks pass.

Examples:
  apiprobe
  apiprobe --env-file ./frontend/.env
  apiprobe --output junit --output-file report.xml
  apiprobe --watch --verbose`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCommand,
}

// Execute runs the CLI and exits the process with the resulting code.
func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr, unless it was already shown.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	printError(os.Stderr, err)
	return ExitFailure
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
}
