package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/httpapi"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
	"github.com/daniyal-rahman/ncfd/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health/metrics HTTP endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			telemetry.New(prometheus.DefaultRegisterer)

			srv := httpapi.New(root.HTTP.ListenAddr, map[string]httpapi.HealthChecker{"postgres": db})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info().Str("addr", root.HTTP.ListenAddr).Msg("httpapi: listening")
			return srv.ListenAndServe(ctx)
		},
	}
	return cmd
}
