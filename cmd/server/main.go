package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite-gym/ignitegym/internal/config"
	"github.com/ignite-gym/ignitegym/internal/logger"
	"github.com/ignite-gym/ignitegym/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create server
	srv, err := server.New(ctx, cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}
	defer srv.Close()

	log.Info().Str("version", version).Msg("Starting Ignite Gym API...")

	// Serve until SIGINT/SIGTERM
	if err := srv.Run(ctx, cfg.HTTP.Address); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		srv.Close()
		os.Exit(1)
	}
}
