//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/thomas-desmond/owltrek/internal/bootstrap"
	"github.com/thomas-desmond/owltrek/internal/domain/nights"
	"github.com/thomas-desmond/owltrek/internal/infra/astro"
	"github.com/thomas-desmond/owltrek/internal/infra/config"
	httpiface "github.com/thomas-desmond/owltrek/internal/interface/http"
	"github.com/thomas-desmond/owltrek/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideNightsConfig,
		provideForecastProvider,
		astro.NewEphemeris,
		nights.NewService,
		wire.Bind(new(nights.Ephemeris), new(*astro.Ephemeris)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
