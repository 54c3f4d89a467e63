package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag     int
	mockDelayFlag    string
	mockGreetingFlag string
	mockVerboseFlag  bool
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start an in-memory backend that serves the probed API",
	Long: `Start an HTTP server implementing GET /api/, POST /api/status and
GET /api/status with an in-memory store. Useful to try apiprobe locally
or to check a CI pipeline end to end.

Examples:
  apiprobe mock
  apiprobe mock --port 9000 --delay 100ms
  apiprobe mock --greeting "Goodbye"   # make the root check fail`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 8001, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().StringVar(&mockGreetingFlag, "greeting", "Hello World", "Message returned by GET /api/")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Log every request")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err)
		}
	}

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithGreeting(mockGreetingFlag),
		mock.WithLogger(newLogger(cmd.ErrOrStderr(), mockVerboseFlag)),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on http://localhost:%d (press Ctrl+C to stop)\n", mockPortFlag)
	return server.StartWithContext(cmd.Context())
}
