package main

import (
	"fmt"
	"os"

	"github.com/placeboard/placeboard/internal/config"
	"github.com/placeboard/placeboard/internal/logger"
	"github.com/placeboard/placeboard/internal/mockapi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Component("mockapi")

	db, err := mockapi.OpenDatabase(cfg.MockAPI.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	srv, err := mockapi.New(cfg.MockAPI, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	if err := srv.Seed(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
