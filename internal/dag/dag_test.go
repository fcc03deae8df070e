package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modlink/internal/manifest"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a", KindExternal)
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a", manifest.KindDynamic)
	assert.Len(t, g.nodes, 1)
	kind, _ := g.Kind("a")
	assert.Equal(t, manifest.KindDynamic, kind, "a declaration replaces an external reference")

	g.AddNode("a", KindExternal)
	kind, _ = g.Kind("a")
	assert.Equal(t, manifest.KindDynamic, kind, "an external reference never replaces a declaration")
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a", manifest.KindDeclarative)
		g.AddNode("b", manifest.KindDeclarative)

		require.NoError(t, g.AddEdge("a", "b")) // b imports a

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a", manifest.KindDeclarative)

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")

		_, err := g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
	})

	t.Run("self reference", func(t *testing.T) {
		g := New()
		g.AddNode("a", manifest.KindDeclarative)
		require.NoError(t, g.AddEdge("a", "a"))
		assert.Equal(t, [][]string{{"a"}}, g.Cycles())
	})
}

func TestCycles(t *testing.T) {
	build := func(kinds map[string]string, edges ...[2]string) *Graph {
		g := New()
		for id, kind := range kinds {
			g.AddNode(id, kind)
		}
		for _, e := range edges {
			require.NoError(t, g.AddEdge(e[0], e[1]))
		}
		return g
	}
	decl := manifest.KindDeclarative

	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().DetectCycles())
		assert.Empty(t, New().Cycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := build(map[string]string{"a": decl, "b": decl, "c": decl, "d": decl},
			[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"}, [2]string{"c", "d"})
		assert.NoError(t, g.DetectCycles())
		assert.Empty(t, g.Cycles())
	})

	t.Run("longer cycle is reported once", func(t *testing.T) {
		g := build(map[string]string{"a": decl, "b": decl, "c": decl, "d": decl},
			[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"d", "a"})
		assert.Equal(t, [][]string{{"a", "b", "c", "d"}}, g.Cycles())
		assert.ErrorContains(t, g.DetectCycles(), "cycle detected")
	})

	t.Run("disjoint cycles", func(t *testing.T) {
		g := build(map[string]string{"a": decl, "b": decl, "x": decl, "y": decl, "z": decl},
			[2]string{"a", "b"}, [2]string{"b", "a"},
			[2]string{"x", "y"}, [2]string{"y", "z"}, [2]string{"z", "y"})
		assert.Equal(t, [][]string{{"a", "b"}, {"y", "z"}}, g.Cycles())
		assert.Empty(t, g.MixedCycles())
	})

	t.Run("mixed cycle", func(t *testing.T) {
		g := build(map[string]string{"a": decl, "b": manifest.KindDynamic, "c": decl},
			[2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"b", "c"})
		assert.Equal(t, [][]string{{"a", "b"}}, g.MixedCycles())
	})
}

func TestBuild(t *testing.T) {
	defs, err := manifest.Parse([]byte(`
module "app" {
  import "lib" { module = "lib" }
  import "os" { module = "host/os" }
}

module "lib" {
  kind = "dynamic"
  import "app" { module = "app" }
}
`), "graph.hcl")
	require.NoError(t, err)

	g, err := Build(context.Background(), defs)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"host/os"}, g.External())

	deps, err := g.Dependencies("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"host/os", "lib"}, deps)

	assert.Equal(t, [][]string{{"app", "lib"}}, g.MixedCycles())
}
