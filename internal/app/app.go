// Package app assembles configuration, logging, storage and the controller
// for the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"

	"seo-cluster/internal/config"
	"seo-cluster/internal/handler"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/storage"
)

type Options struct {
	ConfigPath string
	Debug      bool
	// Override is applied after loading and before validation of the result.
	Override func(*config.Config)
	Handler  []handler.Option
}

type App struct {
	Config     *config.Config
	Cache      storage.Cache
	Controller *handler.Controller
	Log        *logger.Logger
}

func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.NewManager().Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Override != nil {
		opts.Override(cfg)
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	if opts.Debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	log := logger.GetLogger().WithField("component", "app")

	cache, err := storage.Open(ctx, cfg.Storage.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	ctrl, err := handler.NewController(cfg, cache, opts.Handler...)
	if err != nil {
		cache.Close()
		return nil, err
	}

	logger.GetSecurityLogger(log).SafeDebug("Application ready", map[string]interface{}{
		"storage_driver": cfg.Storage.Driver,
		"storage_dsn":    cfg.Storage.DSN,
		"base_url":       cfg.API.ResolveBaseURL(),
		"login":          cfg.API.Login,
	})
	return &App{Config: cfg, Cache: cache, Controller: ctrl, Log: log}, nil
}

func (a *App) Close() error {
	return a.Cache.Close()
}
