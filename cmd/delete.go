// cmd/delete.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a database record from the vault",
	Long: `Removes the named record from the vault. The container itself is not
touched; stop and remove it with your container tooling if you no longer
need it.`,
	Args: cobra.ExactArgs(1),
	RunE: cli.Wrap(func(rc *vaultctx.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		passphrase, err := vaultctx.PromptPassphrase(rc, "Vault passphrase")
		if err != nil {
			return err
		}

		v, err := vault.Open(rc, cfg.VaultPath, passphrase)
		if err != nil {
			return err
		}
		defer v.Close()

		if err := v.Delete(rc, args[0]); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Database %q deleted from the vault.\n", args[0])
		return nil
	}),
}
