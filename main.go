package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wfunc/partyserver/config"
	"github.com/wfunc/partyserver/logger"
	"github.com/wfunc/partyserver/persistence"
	"github.com/wfunc/partyserver/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Bootstrap logger until the configured level is known
	if err := logger.Init("info", false); err != nil {
		panic(err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Reinitialize logger from config
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		logger.Log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize archive
	archive, err := persistence.New(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open %s archive: %v", cfg.Database.Driver, err)
	}
	defer archive.Close()
	logger.Log.Infof("Archive ready (%s).", cfg.Database.Driver)

	gameServer := server.NewGameServer(cfg, archive)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting party server on %s", cfg.Server.HTTPAddress)
		errChan <- gameServer.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		gameServer.Shutdown(shutdownCtx)
	}
}
