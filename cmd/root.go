// cmd/root.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serentry/dbvault/pkg/config"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/logger"
)

// RootCmd is the base command for dbvault.
var RootCmd = &cobra.Command{
	Use:   "dbvault",
	Short: "Provision local containerized databases with encrypted credential storage",
	Long: `dbvault provisions local containerized databases (PostgreSQL, MySQL, Redis)
and keeps their generated credentials in a single encrypted,
passphrase-gated vault file instead of plaintext configuration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		logger.Init(debug)
	},
}

func init() {
	RootCmd.PersistentFlags().String("vault-path", "", "path to the vault file (default: XDG config location)")
	RootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	RootCmd.AddCommand(createCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(getAllCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(resetCmd)
	RootCmd.AddCommand(statusCmd)
}

// settings resolves the effective runtime settings for a command.
func settings(cmd *cobra.Command) (config.Settings, error) {
	return config.Load(config.New(), cmd.Flags())
}

// Execute runs the root command and exits with a taxonomy-appropriate
// code on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if dberr.IsExpectedUserError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		}
		logger.Sync()
		os.Exit(dberr.ExitCode(err))
	}
	logger.Sync()
}
