// Package app assembles the sitemap runner from configuration.
package app

import (
	"fmt"

	"github.com/starlitjournals/sitemap/config"
	"github.com/starlitjournals/sitemap/internal/backend"
	"github.com/starlitjournals/sitemap/internal/metrics"
	"github.com/starlitjournals/sitemap/internal/sitemap"
	"github.com/starlitjournals/sitemap/internal/storage"
	"github.com/starlitjournals/sitemap/internal/utils"
)

type App struct {
	Config  *config.Config
	Logger  *utils.RunLogger
	Store   storage.Store // nil when the run ledger is disabled
	Metrics *metrics.Collector
	Runner  *sitemap.Runner
}

func New(cfg *config.Config) (*App, error) {
	logger, err := utils.NewRunLogger(cfg.Log.Dir, cfg.Log.Debug)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}

	var recorder sitemap.RunRecorder
	if cfg.LedgerEnabled() {
		store, err := storage.NewStore(cfg.Storage.Driver, cfg.Storage.URL)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("failed to open run ledger: %w", err)
		}
		a.Store = store
		recorder = store
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.UserAgent, cfg.GetFetchTimeout())
	logger.LogDebug("Backend %s, timeout %s, output %s", cfg.Backend.URL, cfg.GetFetchTimeout(), cfg.Output.Path)

	a.Runner = sitemap.NewRunner(
		sitemap.NewBuilder(client, logger),
		sitemap.RunnerConfig{Domain: cfg.Site.Domain, OutputPath: cfg.Output.Path},
		logger,
		recorder,
		a.Metrics,
	)

	return a, nil
}

// PushMetrics sends run metrics to the configured Pushgateway, if any.
func (a *App) PushMetrics() {
	if a.Config.Metrics.PushgatewayURL == "" {
		return
	}
	if err := a.Metrics.Push(a.Config.Metrics.PushgatewayURL, a.Config.Metrics.Job); err != nil {
		a.Logger.LogError("%v", err)
	}
}

func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.LogError("Failed to close run ledger: %v", err)
		}
	}
	return a.Logger.Close()
}
