package app

import (
	"os"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
	"github.com/bobmcallan/vire-charts/internal/config"
	"github.com/bobmcallan/vire-charts/internal/handlers"
	"github.com/bobmcallan/vire-charts/internal/mcp"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Registry *charts.Registry
	Images   *charts.DiskImageStore
	Metadata *charts.FileMetadataStore
	Builder  *charts.Builder

	// HTTP handlers
	TimelineHandler *handlers.TimelineHandler
	ChartsHandler   *handlers.ChartsHandler
	ImageHandler    *handlers.ImageHandler
	HealthHandler   *handlers.HealthHandler
	VersionHandler  *handlers.VersionHandler
	MCPHandler      *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	a.Registry = charts.NewRegistry(cfg.SymbolSet())
	a.Images = charts.NewDiskImageStore(cfg.Charts.UploadsDir, charts.DefaultURLPrefix)
	a.Metadata = charts.NewFileMetadataStore(cfg.Charts.MetadataDir)
	a.Builder = charts.NewBuilder(a.Registry, a.Images, a.Metadata, logger)

	a.bootstrapDirs()
	a.initHandlers()

	logger.Info().
		Str("uploads_dir", cfg.Charts.UploadsDir).
		Str("metadata_dir", cfg.Charts.MetadataDir).
		Int("symbols", len(a.Registry.Symbols())).
		Msg("application initialization complete")

	return a, nil
}

// bootstrapDirs creates the image and metadata directories. Failures are
// logged; a missing directory reads as empty.
func (a *App) bootstrapDirs() {
	for _, symbol := range a.Registry.Symbols() {
		if err := a.Images.EnsureDirs(symbol); err != nil {
			a.Logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to create image directories")
		}
	}
	if err := os.MkdirAll(a.Metadata.Dir(), 0755); err != nil {
		a.Logger.Warn().Err(err).Str("dir", a.Metadata.Dir()).Msg("failed to create metadata directory")
	}
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.TimelineHandler = handlers.NewTimelineHandler(a.Logger, a.Builder, a.Registry.Symbols(), a.Config.DefaultSymbol())
	a.ChartsHandler = handlers.NewChartsHandler(a.Logger, a.Builder, a.Config.InvalidSymbolStatus())
	a.ImageHandler = handlers.NewImageHandler(a.Logger, a.Registry, a.Images)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.MCPHandler = mcp.NewHandler(a.Registry, a.Builder, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
