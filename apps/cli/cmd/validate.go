package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/env"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Resolve the backend URL without running any check",
	Long: `Resolve the backend URL from the env file and config without sending
any request. Exits 0 when the URL resolves, 1 otherwise.

Examples:
  apiprobe validate
  apiprobe validate --env-file ./frontend/.env --url-key BACKEND_URL`,
	Args: cobra.NoArgs,
	RunE: validateCommand,
}

func init() {
	flags := validateCmd.Flags()
	flags.StringVar(&envFileFlag, "env-file", env.DefaultFile, "Env file holding the backend URL")
	flags.StringVar(&urlKeyFlag, "url-key", env.DefaultKey, "Key of the backend URL in the env file")
	flags.StringVar(&configFlag, "config", "", "Path to config file (default: apiprobe.yaml in the working directory)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	baseURL, err := env.ResolveBaseURL(cfg.EnvFile, cfg.URLKey)
	if err != nil {
		return err
	}

	if cfg.Source != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", cfg.Source)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s=%s (%s)\n", cfg.URLKey, baseURL, cfg.EnvFile)
	return nil
}
