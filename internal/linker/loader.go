package linker

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/metrics"
	"github.com/vk/modlink/internal/registry"
)

// ExternalLoader resolves a module that is not in the registry. It models a
// parent registry or a fetch mechanism supplied by the host. ctx carries the
// loading call's logger and cancellation.
type ExternalLoader func(ctx context.Context, name string) (any, error)

// ChainExternal returns an ExternalLoader that asks each of loaders in turn
// and answers with the first present value. An error stops the chain.
func ChainExternal(loaders ...ExternalLoader) ExternalLoader {
	return func(ctx context.Context, name string) (any, error) {
		for _, load := range loaders {
			v, err := load(ctx, name)
			if err != nil {
				return nil, err
			}
			if truthy(v) {
				return v, nil
			}
		}
		return nil, nil
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithExternalLoader sets the hook consulted for names missing from both the
// registry and the module cache.
func WithExternalLoader(fn ExternalLoader) Option {
	return func(l *Loader) { l.external = fn }
}

// WithMetrics makes the loader record its activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithGlobal sets the value returned by Global.
func WithGlobal(v any) Option {
	return func(l *Loader) { l.global = v }
}

// Loader links and evaluates the modules of one registry and caches their
// final export values.
type Loader struct {
	reg      *registry.Registry
	records  map[string]*Record
	cache    map[string]any
	external ExternalLoader
	metrics  *metrics.Metrics
	global   any
}

// New creates a loader over reg.
func New(reg *registry.Registry, opts ...Option) *Loader {
	l := &Loader{
		reg:     reg,
		records: make(map[string]*Record),
		cache:   make(map[string]any),
		global:  registry.Exports{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the registry the loader links from.
func (l *Loader) Registry() *registry.Registry {
	return l.reg
}

// Global returns the host-provided global value. The loader never writes it.
func (l *Loader) Global() any {
	return l.global
}

// Set seeds the module cache directly, bypassing linking.
func (l *Loader) Set(name string, value any) {
	l.cache[name] = value
}

// Get reads the module cache without linking anything.
func (l *Loader) Get(name string) (any, bool) {
	v, ok := l.cache[name]
	return v, ok
}

// Load links and evaluates name and everything it reaches, removes its entry
// from the registry and returns its cached export value. Repeated calls return
// the same value.
func (l *Loader) Load(ctx context.Context, name string) (any, error) {
	logger := ctxlog.FromContext(ctx)
	l.metrics.IncLoads()

	if v, ok := l.cache[name]; ok {
		l.metrics.IncCacheHits()
		logger.Debug("Module served from cache.", "module", name)
		return v, nil
	}

	entry, ok := l.reg.Lookup(name)
	if !ok {
		return nil, l.fail(name, ErrModuleNotPresent)
	}

	if err := l.link(ctx, entry); err != nil {
		return nil, l.fail(name, err)
	}
	if err := l.ensureEvaluated(ctx, name, make(map[string]bool)); err != nil {
		return nil, l.fail(name, err)
	}
	l.reg.Delete(name)

	var exports any
	switch m := entry.Module.(type) {
	case *Record:
		exports = m.exports
	case *registry.DynamicModule:
		exports = m.Exports
	}
	if !truthy(exports) || (!entry.IsDeclarative() && !isModuleObject(exports)) {
		exports = WrapDefault(exports)
	}
	l.cache[name] = exports

	logger.Info("Module loaded.", "module", name, "kind", registry.Kind(entry.Body))
	return exports, nil
}

func (l *Loader) fail(name string, err error) error {
	l.metrics.IncFailures(reason(err))
	return &LoadError{Module: name, Err: err}
}

// resolveExternal answers a name that is not in the registry, first from the
// cache and then from the external hook.
func (l *Loader) resolveExternal(ctx context.Context, name string) (any, error) {
	if v, ok := l.cache[name]; ok && truthy(v) {
		return v, nil
	}
	if l.external == nil {
		return nil, fmt.Errorf("%w '%s'", ErrUnresolvable, name)
	}

	l.metrics.IncExternal()
	ctxlog.FromContext(ctx).Debug("Resolving module through external loader.", "module", name)
	v, err := l.external(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnresolvable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w '%s': %w", ErrUnresolvable, name, err)
	}
	if !truthy(v) {
		return nil, fmt.Errorf("%w '%s'", ErrUnresolvable, name)
	}
	return v, nil
}

// getModule returns the export value of name as seen from a dynamic module's
// require function.
func (l *Loader) getModule(ctx context.Context, name string) (any, error) {
	entry, ok := l.reg.Lookup(name)
	if !ok {
		v, err := l.resolveExternal(ctx, name)
		if err != nil {
			return nil, err
		}
		return Unwrap(v), nil
	}

	if entry.IsDeclarative() {
		if entry.Module == nil {
			if err := l.link(ctx, entry); err != nil {
				return nil, err
			}
		}
		if err := l.ensureEvaluated(ctx, name, make(map[string]bool)); err != nil {
			return nil, err
		}
		return Unwrap(entry.Module.(*Record).exports), nil
	}

	if !entry.Evaluated {
		if err := l.linkDynamic(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entry.Module.(*registry.DynamicModule).Exports, nil
}
