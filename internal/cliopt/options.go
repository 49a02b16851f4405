// Package cliopt resolves the CLI's global configuration. Precedence is
// flags, then LEDGERQ_* environment variables, then the config file, then
// defaults.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
package cliopt

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
type GlobalOptions struct {
	Backend        string
	SQLitePath     string
	PostgresDSN    string
	PostgresSchema string

	Format   string
	LogLevel string
	Config   string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:    "sqlite",
		SQLitePath: "ledger.db",
		Format:     "table",
		LogLevel:   "warn",
	}
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")
	fs.StringVar(&g.SQLitePath, "db", g.SQLitePath, "sqlite database file path")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema name (default: ledgerq)")
	fs.StringVar(&g.Format, "format", g.Format, "output format: table|json")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&g.Config, "config", g.Config, "config file path")
}

// Resolve layers environment variables and the config file under any flags
// the user set explicitly.
func Resolve(fs *pflag.FlagSet, g *GlobalOptions) error {
	v := viper.New()
	v.SetEnvPrefix("LEDGERQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	if g.Config != "" {
		v.SetConfigFile(g.Config)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	} else {
		v.SetConfigName("ledgerq")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ledgerq")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
	}

	g.Backend = v.GetString("backend")
	g.SQLitePath = v.GetString("db")
	g.PostgresDSN = v.GetString("pg-dsn")
	g.PostgresSchema = v.GetString("pg-schema")
	g.Format = v.GetString("format")
	g.LogLevel = v.GetString("log-level")
	return nil
}
