package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/osnetwork/go-auth"
	"github.com/osnetwork/go-auth/activitymap"
	"github.com/osnetwork/go-auth/internal/config"
	"github.com/osnetwork/go-auth/internal/logging"
	"github.com/osnetwork/go-auth/internal/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :5000)")
	_ = a.v.BindPFlag(config.ServerAddrKey, cmd.Flags().Lookup("addr"))

	cmd.Flags().Bool("enforce-ownership", false, "require the path id to match the token id")
	_ = a.v.BindPFlag(config.EnforceOwnershipKey, cmd.Flags().Lookup("enforce-ownership"))

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openStore(ctx, cfg, cfg.Store.Migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := auth.NewMetrics()
	var registry *prometheus.Registry
	if cfg.Server.Metrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.Register(registry)
	}

	auther := auth.NewAuthenticator(store, cfg.Auth).
		WithLogger(logging.Named("auther")).
		WithMetrics(metrics).
		WithActivitySink(auth.MultiActivitySink{
			activitymap.Sink(auditRecord),
			metrics.ActivitySink(),
		})

	gate := auth.NewHTTPAuthenticator(auther.TokenService(), cfg.Auth).
		WithLogger(logging.Named("gate")).
		WithMetrics(metrics)

	app := server.New(server.Deps{
		Auther:   auther,
		Gate:     gate,
		Logger:   logging.Named("http"),
		Registry: registry,
		Routes: auth.RouteOptions{
			Account: []auth.AccountControllerOption{
				auth.WithEnforceOwnership(cfg.Server.EnforceOwnership),
				auth.WithPhoneRegion(cfg.Server.PhoneRegion),
			},
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("store", cfg.Store.Driver).
			Bool("enforce_ownership", cfg.Server.EnforceOwnership).
			Msg("server starting")
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
		log.Info().Msg("context cancelled, shutting down")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

// auditRecord writes one structured line per activity event
func auditRecord(_ context.Context, record activitymap.Record) error {
	log.Info().
		Str("component", "activity").
		Str("channel", record.Channel).
		Str("actor_id", record.ActorID).
		Str("verb", record.Verb).
		Str("object_type", record.ObjectType).
		Str("object_id", record.ObjectID).
		Fields(record.Metadata).
		Time("occurred_at", record.OccurredAt).
		Msg("activity")
	return nil
}
