package main

import (
	"hotel/config"
	"hotel/di"
	"hotel/helper"
	"hotel/infras/metrics"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Hotel API
// @version 1.0
// @description Rooms, bookings and users of a hotel.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Migrate(cfg, helper.DirectionUp); err != nil {
			log.Fatal().Err(err).Msg("failed to run database migrations")
		}
	}

	if cfg.Metrics.Enable {
		metrics.Register()
	}

	http, cleanup := di.InitializeService()
	defer cleanup()

	http.Serve()
}
