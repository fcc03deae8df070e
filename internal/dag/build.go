package dag

import (
	"context"

	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/manifest"
)

// Build creates the graph of the given module definitions. Imports of names
// that no definition declares become KindExternal nodes.
func Build(ctx context.Context, defs []*manifest.Definition) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	g := New()

	for _, def := range defs {
		g.AddNode(def.Name, def.Kind)
	}
	for _, def := range defs {
		for _, dep := range def.Dependencies() {
			if _, ok := g.Kind(dep); !ok {
				g.AddNode(dep, KindExternal)
			}
			if err := g.AddEdge(dep, def.Name); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Module graph built.", "nodes", g.Len(), "external", len(g.External()))
	return g, nil
}
