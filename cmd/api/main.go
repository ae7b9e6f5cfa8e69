package main

import (
	"os"

	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/pkg/logger"
	"github.com/yigit/gradebook/internal/server"
)

// @title Gradebook API
// @version 1.0
// @description Student marks management: accounts, student records and aggregate statistics.

// @BasePath /
// @schemes http https

func main() {
	srv, err := server.NewServer(config.Path())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
