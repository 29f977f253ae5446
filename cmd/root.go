package main

import (
	"account_service/internal/config"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command of the account service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "account-service",
		Short:         "User accounts: login, JWT issuance and user management over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String(config.FlagConfigDir, "configs", "directory holding config.yml and config.<env>.yml")
	flags.String(config.FlagEnv, "", "environment profile (dev, test); overrides API_ENV")
	flags.String(config.FlagPort, "", "HTTP listen port; overrides config")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("account-service %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
