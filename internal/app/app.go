package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/modlink/internal/config"
	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/linker"
	"github.com/vk/modlink/internal/manifest"
	"github.com/vk/modlink/internal/metrics"
	"github.com/vk/modlink/internal/registry"
)

// Option customizes an App beyond what Config carries.
type Option func(*options)

type options struct {
	linker []linker.Option
}

// WithExternalLoader sets the hook used for imports no manifest declares.
func WithExternalLoader(fn linker.ExternalLoader) Option {
	return func(o *options) { o.linker = append(o.linker, linker.WithExternalLoader(fn)) }
}

// WithGlobal sets the value manifests read through the "global" variable.
func WithGlobal(v any) Option {
	return func(o *options) { o.linker = append(o.linker, linker.WithGlobal(v)) }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	runID      string
	defs       []*manifest.Definition
	registry   *registry.Registry
	loader     *linker.Loader
	metricsReg *prometheus.Registry
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Loaded exports are
// written to outW and logs to logW. Manifests that fail to load or register
// are a fatal startup error and cause a panic.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *config.Config, opts ...Option) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	defs, err := manifest.NewLoader().Load(ctx, cfg.ModulesPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifests: %w", err))
	}

	metricsReg := prometheus.NewRegistry()
	reg := registry.New(logger)
	loader := linker.New(reg, append([]linker.Option{linker.WithMetrics(metrics.New(metricsReg))}, o.linker...)...)

	if err := manifest.RegisterAll(ctx, reg, defs, loader.Global()); err != nil {
		panic(fmt.Errorf("failed to register modules: %w", err))
	}
	logger.Debug("All modules registered.", "count", reg.Len())

	return &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		config:     cfg,
		runID:      runID,
		defs:       defs,
		registry:   reg,
		loader:     loader,
		metricsReg: metricsReg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Loader returns the application's module loader.
func (a *App) Loader() *linker.Loader {
	return a.loader
}

// RunID returns the identifier attached to every log line of this App.
func (a *App) RunID() string {
	return a.runID
}
