// pkg/config/config.go

// Package config resolves runtime settings through viper: defaults,
// an optional config file, DBVAULT_* environment variables, and flags,
// in ascending precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/serentry/dbvault/pkg/vault"
)

// Settings are the resolved runtime knobs.
type Settings struct {
	VaultPath      string        `mapstructure:"vault_path"`
	HealthTimeout  time.Duration `mapstructure:"health_timeout"`
	HealthGrace    time.Duration `mapstructure:"health_grace"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
	Debug          bool          `mapstructure:"debug"`
}

// New builds a viper instance with dbvault defaults and environment
// binding. Config file: $XDG_CONFIG_HOME/dbvault/config.yaml, optional.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("vault_path", vault.DefaultPath())
	v.SetDefault("health_timeout", 60*time.Second)
	v.SetDefault("health_grace", 10*time.Second)
	v.SetDefault("health_interval", time.Second)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("DBVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$XDG_CONFIG_HOME/dbvault")
	v.AddConfigPath("$HOME/.config/dbvault")

	// Missing config file is the normal case.
	_ = v.ReadInConfig()

	return v
}

// flagKeys maps settings keys to their kebab-case flag names.
var flagKeys = map[string]string{
	"vault_path":      "vault-path",
	"health_timeout":  "health-timeout",
	"health_grace":    "health-grace",
	"health_interval": "health-interval",
	"debug":           "debug",
}

// Load binds the command's flags over the viper instance and unmarshals
// the final settings. Flags that the command does not define are skipped.
func Load(v *viper.Viper, flags *pflag.FlagSet) (Settings, error) {
	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, err
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
