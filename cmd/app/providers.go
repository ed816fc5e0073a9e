package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
	"github.com/thomas-desmond/owltrek/internal/infra/config"
	"github.com/thomas-desmond/owltrek/internal/infra/forecastcache"
	"github.com/thomas-desmond/owltrek/internal/infra/weather/openmeteo"
)

func provideNightsConfig(cfg *config.Config) nights.Config {
	return nights.Config{
		GatePolicy:  cfg.Analyzer.GatePolicy,
		DefaultDays: cfg.Window.DefaultDays,
		MaxDays:     cfg.Window.MaxDays,
		FanOut:      cfg.Analyzer.FanOut,
	}
}

func provideForecastProvider(cfg *config.Config, logger *slog.Logger) nights.ForecastProvider {
	client := openmeteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.HorizonDays, cfg.Weather.Timeout)
	if cfg.Cache.TTL == 0 {
		return client
	}
	return forecastcache.NewProvider(client, provideCacheStore(cfg, logger), cfg.Cache.TTL, logger)
}

func provideCacheStore(cfg *config.Config, logger *slog.Logger) forecastcache.Store {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return forecastcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey forecast cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return forecastcache.NewValkeyStore(client, "owltrek")
		}
	}
	return forecastcache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
