package main

import (
	"os"

	"github.com/yigit/campusportal/internal/bootstrap"
	"github.com/yigit/campusportal/internal/config"
	"github.com/yigit/campusportal/internal/pkg/logger"
	"github.com/yigit/campusportal/internal/server"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(config.ValidatePortal)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize portal")
		os.Exit(1)
	}

	portal, err := bootstrap.BuildPortal(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup dependencies")
		os.Exit(1)
	}

	router, err := bootstrap.SetupPortalRouter(cfg, portal)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup router")
		portal.Close()
		os.Exit(1)
	}

	srv := server.New("portal", cfg.Server.Port, router, lgr)
	err = srv.Run()
	portal.Close()
	if err != nil {
		lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	lgr.Info().Msg("Application finished gracefully.")
}
