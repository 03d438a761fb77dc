// cmd/create.go

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/cli"
	"github.com/serentry/dbvault/pkg/database"
	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/orchestrator"
	"github.com/serentry/dbvault/pkg/provision"
	"github.com/serentry/dbvault/pkg/vault"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Provision a database container and store its credentials in the vault",
	Long: `Provisions a local database container of the requested type, waits for it
to become healthy, and stores the credentials and resolved connection
string encrypted in the vault. Creates the vault on first run.`,
	Args: cobra.ExactArgs(1),
	RunE: cli.Wrap(func(rc *vaultctx.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)
		name := args[0]

		cfg, err := settings(cmd)
		if err != nil {
			return err
		}

		typeStr, _ := cmd.Flags().GetString("type")
		dbType, err := database.ParseDBType(typeStr)
		if err != nil {
			return err
		}

		creds, err := credentialsFromFlags(cmd, dbType)
		if err != nil {
			return err
		}

		passphrase, err := vaultctx.PromptPassphrase(rc, "Vault passphrase")
		if err != nil {
			return err
		}

		v, err := vault.OpenOrCreate(rc, cfg.VaultPath, passphrase)
		if err != nil {
			return err
		}
		defer v.Close()

		engine, err := provision.NewDockerEngine()
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := engine.Close(); closeErr != nil {
				logger.Warn("Failed to close Docker client", zap.Error(closeErr))
			}
		}()

		p := provision.NewProvisioner(engine, provision.GateConfig{
			Timeout:  cfg.HealthTimeout,
			Grace:    cfg.HealthGrace,
			Interval: cfg.HealthInterval,
		})

		rec, err := orchestrator.CreateDatabase(rc, v, p, name, dbType, creds)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Database %q is ready (container %s)\n", rec.Name, shortID(rec.ContainerID))
		return nil
	}),
}

func init() {
	createCmd.Flags().String("type", "postgres", "database type: postgres, mysql, or redis")
	createCmd.Flags().String("username", "", "database username")
	createCmd.Flags().String("password", "", "database password")
	createCmd.Flags().String("database", "", "database name inside the instance")
	createCmd.Flags().Uint16("port", 0, "host port to publish (default: the type's standard port)")
	createCmd.Flags().String("root-password", "", "root password (mysql only)")
	createCmd.Flags().Duration("health-timeout", 0, "health gate deadline")
	createCmd.Flags().Duration("health-grace", 0, "grace period for containers without a health check")
}

// credentialsFromFlags assembles and validates the credential set. Redis
// takes a database number instead of a name; the port defaults to the
// type's standard port.
func credentialsFromFlags(cmd *cobra.Command, dbType database.DBType) (database.Credentials, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	dbName, _ := cmd.Flags().GetString("database")
	port, _ := cmd.Flags().GetUint16("port")
	rootPassword, _ := cmd.Flags().GetString("root-password")

	if username == "" || password == "" {
		return database.Credentials{}, dberr.NewUserError("--username and --password are required")
	}

	if dbName == "" {
		if dbType == database.Redis {
			dbName = "0"
		} else {
			return database.Credentials{}, dberr.NewUserError("--database is required for %s", dbType)
		}
	}

	if port == 0 {
		tpl, err := database.Resolve(dbType)
		if err != nil {
			return database.Credentials{}, err
		}
		port = tpl.DefaultPort
	}

	return database.Credentials{
		Username:     username,
		Password:     password,
		Database:     dbName,
		Port:         port,
		RootPassword: rootPassword,
	}, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
