package linker

import (
	"context"
	"fmt"

	"github.com/vk/modlink/internal/ctxlog"
)

// ensureEvaluated runs the body of a declarative module after its
// dependencies, depth-first and left to right. Names in seen are on the
// current path and are skipped, which is what ends cycles.
func (l *Loader) ensureEvaluated(ctx context.Context, name string, seen map[string]bool) error {
	entry, ok := l.reg.Lookup(name)
	if !ok || entry.Evaluated || !entry.IsDeclarative() {
		return nil
	}
	seen[name] = true

	for _, depName := range entry.NormalizedDeps {
		if seen[depName] {
			continue
		}
		if _, registered := l.reg.Lookup(depName); !registered {
			if _, err := l.resolveExternal(ctx, depName); err != nil {
				return fmt.Errorf("module '%s': %w", name, err)
			}
			continue
		}
		if err := l.ensureEvaluated(ctx, depName, seen); err != nil {
			return err
		}
	}

	// A cyclic path through a dependency may have run us already.
	if entry.Evaluated {
		return nil
	}
	if entry.Module == nil {
		if err := l.link(ctx, entry); err != nil {
			return err
		}
	}
	rec := entry.Module.(*Record)
	if rec.execute == nil {
		// The declare factory failed during an earlier load.
		return fmt.Errorf("%w for '%s'", ErrMalformedDeclarative, name)
	}

	entry.Evaluated = true
	l.metrics.IncExecuted("declarative")
	ctxlog.FromContext(ctx).Debug("Executing declarative module.", "module", name)
	if err := rec.execute(); err != nil {
		return fmt.Errorf("module '%s': execute: %w", name, err)
	}
	return nil
}
