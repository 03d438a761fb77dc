// cmd/list.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored database names",
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

		names := v.ListNames()
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, "No databases stored.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(os.Stdout, name)
		}
		return nil
	}),
}
