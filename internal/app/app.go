package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Bahjat/seo-insight/internal/analyzer"
	"github.com/Bahjat/seo-insight/internal/cache"
	"github.com/Bahjat/seo-insight/internal/pageinsight"
	"github.com/Bahjat/seo-insight/internal/platform/config"
)

// App holds the wired components shared by the API server and the CLI.
type App struct {
	Cache   *cache.Cache
	Engine  *pageinsight.Engine
	Service *analyzer.Service

	cfg    config.Config
	logger *slog.Logger
}

// New wires the fetcher, optional collaborators, result cache, engine and
// service from cfg.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	results, err := cache.New(cache.Options{
		MemoSize: cfg.CacheMemoSize,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	fetcher := pageinsight.NewHTTPClient(cfg.FetchTimeout, cfg.AllowPrivateNetworks)

	var opts []pageinsight.Option
	if cfg.LinkCheckEnabled {
		opts = append(opts, pageinsight.WithLinkChecker(
			pageinsight.NewLinkChecker(cfg.LinkCheckConcurrency, cfg.AllowPrivateNetworks)))
	}
	if cfg.SiteProbeEnabled {
		opts = append(opts, pageinsight.WithSiteProber(pageinsight.NewSiteProber(fetcher)))
	}

	engine := pageinsight.NewEngine(fetcher, results, logger, opts...)

	return &App{
		Cache:   results,
		Engine:  engine,
		Service: analyzer.NewService(engine, logger),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return analyzer.NewRouter(analyzer.RouterConfig{
		Service:        a.Service,
		Logger:         a.logger,
		Stats:          a.Cache,
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AnalyzeTimeout: a.cfg.AnalyzeTimeout,
	})
}

// Close tears down the result cache.
func (a *App) Close() {
	a.Cache.Close()
}
