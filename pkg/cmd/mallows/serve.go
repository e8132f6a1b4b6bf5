package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/mallows-winner-estimator/pkg/api"
)

func newServeCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimators over HTTP",
		Long: `Starts the HTTP API. Configuration comes from the environment:
SERVER_ADDRESS, SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT, ESTIMATE_TIMEOUT,
MAX_SAMPLES, MAX_WORKERS, MAX_ROUNDS, ESTIMATE_LOG_LEVEL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), address, cmd.Flags().Changed("address"))
		},
	}
	cmd.Flags().StringVar(&address, "address", ":8080", "listen address (overrides SERVER_ADDRESS)")
	return cmd
}

func runServe(ctx context.Context, address string, overrideAddress bool) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}
	if overrideAddress {
		cfg.Server.Address = address
	}

	log.Info().
		Str("address", cfg.Server.Address).
		Dur("estimate_timeout", cfg.Estimate.Timeout).
		Int("max_samples", cfg.Estimate.MaxSamples).
		Int("max_rounds", cfg.Estimate.MaxRounds).
		Msg("Configuration loaded")

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(api.NewHandlers(cfg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
