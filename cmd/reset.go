// cmd/reset.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the vault file entirely",
	Long: `Deletes the vault file, including every stored database record. This is
irreversible: all encrypted credentials are lost and a new passphrase can
be set on the next run. Running containers are not touched.`,
	RunE: cli.Wrap(func(rc *vaultctx.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		if !vault.Exists(cfg.VaultPath) {
			fmt.Fprintf(os.Stdout, "No vault file found at %s. Nothing to reset.\n", cfg.VaultPath)
			return nil
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			confirmed, err := vaultctx.ConfirmYesNo(rc,
				"WARNING: this permanently deletes all stored database credentials. Continue?")
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(os.Stdout, "Reset cancelled.")
				return nil
			}
		}

		if err := vault.Reset(rc, cfg.VaultPath); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, "Vault reset. You can set a new passphrase on the next create.")
		return nil
	}),
}

func init() {
	resetCmd.Flags().Bool("force", false, "skip the confirmation prompt")
}
