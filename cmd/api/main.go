package main

import (
	"os"

	"github.com/cmis/studentportal/internal/pkg/logger"
	"github.com/cmis/studentportal/internal/server"
)

// @title CMIS Student Portal API
// @version 1.0
// @description Student registration, profiles, events and n8n pipeline triggers for the CMIS portal

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
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
