package main

import (
	"os"

	"github.com/yigit/campusportal/internal/bootstrap"
	"github.com/yigit/campusportal/internal/config"
	"github.com/yigit/campusportal/internal/pkg/logger"
	"github.com/yigit/campusportal/internal/server"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(config.ValidateMockAPI)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize mock backend")
		os.Exit(1)
	}

	router, err := bootstrap.BuildMockAPI(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup mock backend")
		os.Exit(1)
	}

	srv := server.New("mockapi", cfg.MockAPI.Port, router, lgr)
	if err := srv.Run(); err != nil {
		lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}
}
