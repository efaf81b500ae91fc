package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osnetwork/go-auth"
	"github.com/osnetwork/go-auth/internal/config"
	"github.com/osnetwork/go-auth/internal/logging"
	"github.com/osnetwork/go-auth/repository"
	"github.com/osnetwork/go-auth/repository/pgstore"
)

type app struct {
	v          *viper.Viper
	configFile string
}

// NewRootCmd creates the root command for the osnauth CLI.
func NewRootCmd() *cobra.Command {
	logging.InitDefault()

	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "osnauth",
		Short: "Credential service for the sports network",
		Long: `osnauth registers and authenticates users, players, coaches and admins,
issues signed tokens and serves the role gated account endpoints.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ReadFile(a.v, a.configFile)
			logging.Init(logging.Options{
				Level:   a.v.GetString(config.LogLevelKey),
				Format:  a.v.GetString(config.LogFormatKey),
				NoColor: a.v.GetBool(config.LogNoColorKey),
			})
			if err != nil {
				return err
			}
			if path != "" {
				log.Debug().Msgf("using config file: %s", path)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (default ./osnauth.yaml)")

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = a.v.BindPFlag(config.LogLevelKey, cmd.PersistentFlags().Lookup("log-level"))

	cmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = a.v.BindPFlag(config.LogFormatKey, cmd.PersistentFlags().Lookup("log-format"))

	cmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = a.v.BindPFlag(config.LogNoColorKey, cmd.PersistentFlags().Lookup("no-color"))

	cmd.PersistentFlags().String("signing-key", "", "HMAC key used to sign tokens")
	_ = a.v.BindPFlag(config.SigningKeyKey, cmd.PersistentFlags().Lookup("signing-key"))

	cmd.AddCommand(a.newServeCmd())
	cmd.AddCommand(a.newMigrateCmd())
	cmd.AddCommand(a.newHashPasswordCmd())
	cmd.AddCommand(a.newTokenCmd())

	return cmd
}

func (a *app) load() (*config.Config, error) {
	return config.Load(a.v)
}

// openStore opens the configured IdentityStore. close releases the
// underlying connections.
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (store auth.IdentityStore, close func(), err error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pgstore.Open(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := pgstore.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return pgstore.NewUsers(pool), pool.Close, nil
	default:
		db, err := repository.OpenSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := repository.CreateSchema(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return repository.NewUsers(db), func() { _ = db.Close() }, nil
	}
}
