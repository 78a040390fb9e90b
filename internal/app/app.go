// Package app wires configuration, storage and the portfolio engine together.
package app

import (
	"context"
	"fmt"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-folio/internal/assist"
	"github.com/bobmcallan/vire-folio/internal/cache"
	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/handlers"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/mcp"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
	"github.com/bobmcallan/vire-folio/internal/storage"
	"github.com/bobmcallan/vire-folio/internal/store"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager
	Service *portfolio.Service

	// MCP server shared by the HTTP endpoint and stdio transport
	MCPServer *mcpserver.MCPServer

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	PortfolioHandler *handlers.PortfolioHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	switch env {
	case "", "dev", "development", "prod", "production":
	default:
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value")
	}

	sm, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.Storage = sm

	rules := normalizer.New(logger)
	parser, err := assist.NewParser(ctx, cfg.Import.Parser, cfg.Assist, rules, logger)
	if err != nil {
		sm.Close()
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	views := cache.New(cfg.Cache.TTLDuration(), cfg.Cache.MaxEntries)
	a.Service = portfolio.NewService(store.New(sm.RecordStore(), logger), parser, views, logger)

	a.MCPServer = mcp.NewServer(a.Service, cfg.Display.Currency, logger)
	a.initHandlers()

	logger.Info().
		Str("storage", cfg.Storage.Backend).
		Str("parser", cfg.Import.Parser).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	records := a.Storage.RecordStore()
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Config.Storage.Backend, func(ctx context.Context) error {
		_, err := records.LoadAll(ctx, interfaces.EntityHoldings)
		return err
	})
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Service, a.Logger, a.Config.MaxUploadBytes())
	a.MCPHandler = mcp.NewHandler(a.MCPServer, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
