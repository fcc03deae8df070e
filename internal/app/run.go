package app

import (
	"context"
	"fmt"

	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/dag"
)

// Run reports on the module graph, then loads every configured target in
// order and prints its exports. It stops at the first failing load.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	if err := a.inspect(ctx); err != nil {
		return err
	}

	for _, target := range a.config.Targets {
		exports, err := a.loader.Load(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to load module: %w", err)
		}
		if err := a.writeExports(target, exports); err != nil {
			return fmt.Errorf("failed to print module '%s': %w", target, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// inspect logs the shape of the module graph. Cycles are legal, so they are
// reported rather than rejected.
func (a *App) inspect(ctx context.Context) error {
	graph, err := dag.Build(ctx, a.defs)
	if err != nil {
		return fmt.Errorf("failed to build module graph: %w", err)
	}

	if external := graph.External(); len(external) > 0 {
		a.logger.Info("Modules resolved outside the manifests.", "modules", external)
	}
	for _, cycle := range graph.Cycles() {
		a.logger.Info("Module cycle found.", "modules", cycle)
	}
	for _, cycle := range graph.MixedCycles() {
		a.logger.Warn("Module cycle mixes binding models and may fail to link.", "modules", cycle)
	}
	for _, target := range a.config.Targets {
		if _, ok := graph.Kind(target); !ok {
			a.logger.Warn("Requested module is not declared in any manifest.", "module", target)
		}
	}
	return nil
}
