// Package main is the entry point for the modelbridge gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/modelbridge/gateway/external"
	"github.com/modelbridge/gateway/internal/adapters"
	"github.com/modelbridge/gateway/internal/config"
	"github.com/modelbridge/gateway/internal/gateway"
	"github.com/modelbridge/gateway/internal/monitoring"
	"github.com/modelbridge/gateway/internal/store"
)

// shutdownGrace bounds how long in-flight requests may drain.
const shutdownGrace = 30 * time.Second

// loadEnvFiles loads .env from standard locations.
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	configEnv := filepath.Join(homeDir, ".config", "modelbridge", ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Local .env can override.
	_ = godotenv.Load()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the gateway config file")
	flag.Parse()

	loadEnvFiles()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	monitoring.Global(monitoring.LoggerConfig{
		Level:  cfg.Monitoring.LogLevel,
		Format: cfg.Monitoring.LogFormat,
		Output: cfg.Monitoring.LogOutput,
	})
	logger := monitoring.New(monitoring.LoggerConfig{
		Level:  cfg.Monitoring.LogLevel,
		Format: cfg.Monitoring.LogFormat,
		Output: cfg.Monitoring.LogOutput,
	})

	// All registrations happen here, before the first request is served.
	// The registry is read-only from this point on.
	registry := adapters.NewDefaultRegistry()

	invoker, err := external.NewRuntimeInvoker(cfg.Bedrock.Region, cfg.Bedrock.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize bedrock invoker")
	}

	var st store.Store
	switch cfg.Store.Type {
	case "sqlite":
		st, err = store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite store")
		}
	default:
		st = store.NewMemoryStore(0)
	}
	defer st.Close()

	gw := gateway.New(cfg, registry, invoker, st, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("gateway server failed")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := gw.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown did not complete cleanly")
		}
	}
}
