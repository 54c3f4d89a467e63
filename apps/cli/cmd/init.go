package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample apiprobe.yaml",
	Long: `Write a sample apiprobe.yaml config in the current directory.

The file holds the built-in defaults plus a request timeout and a sample
header, ready to be edited.

Examples:
  apiprobe init
  apiprobe init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func sampleConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timeout = config.Duration(30 * time.Second)
	cfg.Headers = map[string]string{
		"X-Request-Source": "apiprobe",
	}
	return cfg
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	if err := sampleConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'apiprobe validate' to check that the backend URL resolves.\n")

	return nil
}
