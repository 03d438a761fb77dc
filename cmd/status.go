// cmd/status.go

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/provision"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report vault and Docker daemon status",
	RunE: cli.Wrap(func(rc *vaultctx.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		if vault.Exists(cfg.VaultPath) {
			count, err := vault.RecordCount(cfg.VaultPath)
			if err != nil {
				fmt.Fprintf(os.Stdout, "Vault:  present at %s (unreadable)\n", cfg.VaultPath)
				logger.Warn("Vault file unreadable", zap.Error(err))
			} else {
				fmt.Fprintf(os.Stdout, "Vault:  present at %s (%d databases)\n", cfg.VaultPath, count)
			}
		} else {
			fmt.Fprintf(os.Stdout, "Vault:  not created yet (would live at %s)\n", cfg.VaultPath)
		}

		engine, err := provision.NewDockerEngine()
		if err != nil {
			fmt.Fprintln(os.Stdout, "Docker: client unavailable")
			logger.Warn("Docker client unavailable", zap.Error(err))
			return nil
		}
		defer func() {
			if closeErr := engine.Close(); closeErr != nil {
				logger.Warn("Failed to close Docker client", zap.Error(closeErr))
			}
		}()

		pingCtx, cancel := context.WithTimeout(rc.Ctx, 5*time.Second)
		defer cancel()
		if err := engine.Ping(pingCtx); err != nil {
			fmt.Fprintln(os.Stdout, "Docker: daemon not reachable")
			logger.Warn("Docker daemon not reachable", zap.Error(err))
			return nil
		}
		fmt.Fprintln(os.Stdout, "Docker: daemon reachable")
		return nil
	}),
}
