package linker

import (
	"context"
	"fmt"

	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/registry"
)

// link binds start and every unevaluated entry it reaches.
func (l *Loader) link(ctx context.Context, start *registry.Entry) error {
	if start.Module != nil {
		return nil
	}

	groups, err := buildGroups(l.reg, start)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Dependency groups built.", "module", start.Name, "groups", len(groups))

	// Group i shares the start entry's model when i is even, and linking
	// begins at the last group.
	declarative := start.IsDeclarative() == (len(groups)%2 == 1)
	for i := len(groups) - 1; i >= 0; i-- {
		for _, entry := range groups[i] {
			if entry.IsDeclarative() != declarative {
				return fmt.Errorf("%w: '%s' landed in a %s group", ErrMixedCycle, entry.Name, kindName(declarative))
			}
			if declarative {
				err = l.linkDeclarative(ctx, entry)
			} else {
				err = l.linkDynamic(ctx, entry)
			}
			if err != nil {
				return err
			}
		}
		declarative = !declarative
	}
	return nil
}

func kindName(declarative bool) string {
	if declarative {
		return "declarative"
	}
	return "dynamic"
}

// linkDeclarative binds entry to its Record, runs its declare factory and
// feeds every dependency's exports into the matching setter. It returns
// immediately for an entry that is already bound, which also ends cycles.
func (l *Loader) linkDeclarative(ctx context.Context, entry *registry.Entry) error {
	if entry.Module != nil {
		return nil
	}
	body, ok := entry.Declarative()
	if !ok {
		return fmt.Errorf("module '%s' is not declarative", entry.Name)
	}

	rec := l.record(entry.Name)
	entry.Module = rec
	ctxlog.FromContext(ctx).Debug("Linking declarative module.", "module", entry.Name, "group", entry.GroupIndex)

	decl, err := body.Declare(rec.setExport)
	if err != nil {
		return fmt.Errorf("module '%s': declare: %w", entry.Name, err)
	}
	if decl.Execute == nil || (decl.Setters == nil && len(entry.NormalizedDeps) > 0) {
		return fmt.Errorf("%w for '%s'", ErrMalformedDeclarative, entry.Name)
	}
	rec.setters = decl.Setters
	rec.execute = decl.Execute
	l.metrics.IncLinked("declarative")

	for i, depName := range entry.NormalizedDeps {
		var exports registry.Exports
		depRec := l.records[depName]
		depEntry, registered := l.reg.Lookup(depName)

		switch {
		case depRec != nil:
			exports = depRec.exports
		case registered && !depEntry.IsDeclarative():
			if depEntry.Module == nil {
				if err := l.linkDynamic(ctx, depEntry); err != nil {
					return err
				}
			}
			exports = depExports(depEntry.Module.(*registry.DynamicModule).Exports)
		case !registered:
			v, err := l.resolveExternal(ctx, depName)
			if err != nil {
				return fmt.Errorf("module '%s': %w", entry.Name, err)
			}
			exports = depExports(v)
		default:
			if err := l.linkDeclarative(ctx, depEntry); err != nil {
				return err
			}
			depRec = depEntry.Module.(*Record)
			exports = depRec.exports
		}

		if depRec != nil {
			depRec.addImporter(rec)
		}
		rec.dependencies = append(rec.dependencies, depRec)
		rec.callSetter(i, exports)
	}
	return nil
}

// linkDynamic runs the factory of a dynamic entry once. Unless the entry asks
// for eager require, its registered dependencies are linked first.
func (l *Loader) linkDynamic(ctx context.Context, entry *registry.Entry) error {
	if entry.Module != nil {
		return nil
	}
	body, ok := entry.Dynamic()
	if !ok {
		return fmt.Errorf("module '%s' is not dynamic", entry.Name)
	}

	exports := registry.Exports{}
	mod := &registry.DynamicModule{Exports: exports, ID: entry.Name}
	entry.Module = mod
	ctxlog.FromContext(ctx).Debug("Linking dynamic module.", "module", entry.Name, "group", entry.GroupIndex, "eager_require", body.EagerRequire)
	l.metrics.IncLinked("dynamic")

	if !body.EagerRequire {
		for _, depName := range entry.NormalizedDeps {
			dep, ok := l.reg.Lookup(depName)
			if !ok {
				continue
			}
			var err error
			if dep.IsDeclarative() {
				err = l.linkDeclarative(ctx, dep)
			} else {
				err = l.linkDynamic(ctx, dep)
			}
			if err != nil {
				return err
			}
		}
	}

	require := func(name string) (any, error) {
		for i, dep := range entry.Deps {
			if dep == name {
				return l.getModule(ctx, entry.NormalizedDeps[i])
			}
		}
		return nil, fmt.Errorf("%w: '%s' required by '%s'", ErrUndeclaredDependency, name, entry.Name)
	}

	entry.Evaluated = true
	l.metrics.IncExecuted("dynamic")
	out, err := body.Execute(require, exports, mod)
	if err != nil {
		return fmt.Errorf("module '%s': execute: %w", entry.Name, err)
	}
	if truthy(out) {
		mod.Exports = out
	}
	return nil
}
