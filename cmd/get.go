// cmd/get.go

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show the decrypted credentials and connection string for a database",
	Args:  cobra.ExactArgs(1),
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

		view, err := v.Get(rc, args[0])
		if err != nil {
			return err
		}

		printView(view)
		return nil
	}),
}

var getAllCmd = &cobra.Command{
	Use:   "get-all",
	Short: "Show every stored database, decrypted",
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

		views, err := v.ListAllDecrypted(rc)
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Fprintln(os.Stdout, "No databases stored.")
			return nil
		}
		for i, view := range views {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			printView(view)
		}
		return nil
	}),
}

func printView(view vault.DecryptedView) {
	fmt.Fprintf(os.Stdout, "Name:        %s\n", view.Name)
	fmt.Fprintf(os.Stdout, "Type:        %s\n", view.DBType)
	fmt.Fprintf(os.Stdout, "Container:   %s\n", shortID(view.ContainerID))
	fmt.Fprintf(os.Stdout, "Username:    %s\n", view.Credentials.Username)
	fmt.Fprintf(os.Stdout, "Password:    %s\n", view.Credentials.Password)
	fmt.Fprintf(os.Stdout, "Database:    %s\n", view.Credentials.Database)
	fmt.Fprintf(os.Stdout, "Host:        localhost:%d\n", view.Credentials.Port)
	fmt.Fprintf(os.Stdout, "Connection:  %s\n", view.ConnectionString)
	fmt.Fprintf(os.Stdout, "Created:     %s\n", view.CreatedAt.Format(time.RFC3339))
}
