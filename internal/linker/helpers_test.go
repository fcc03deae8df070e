package linker

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/modlink/internal/ctxlog"
	"github.com/vk/modlink/internal/registry"
)

// testContext carries a logger that drops everything, so loads do not fall
// back to the default logger.
func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestLoader(t *testing.T, opts ...Option) (*Loader, *registry.Registry) {
	t.Helper()
	reg := registry.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(reg, opts...), reg
}

func mustRegister(t *testing.T, reg *registry.Registry, name string, deps []string, body registry.Body) {
	t.Helper()
	_, err := reg.Register(name, deps, body)
	require.NoError(t, err)
}

// decl builds a declarative body from a factory that cannot fail.
func decl(fn func(export registry.ExportSetter) registry.Declaration) registry.Declarative {
	return registry.Declarative{Declare: func(export registry.ExportSetter) (registry.Declaration, error) {
		return fn(export), nil
	}}
}

// constant is a declarative module without dependencies that exports the
// given values and counts its executions.
func constant(runs *int, values map[string]any) registry.Declarative {
	return decl(func(export registry.ExportSetter) registry.Declaration {
		return registry.Declaration{
			Setters: []registry.Setter{},
			Execute: func() error {
				*runs++
				for k, v := range values {
					export(k, v)
				}
				return nil
			},
		}
	})
}

func dyn(eager bool, fn registry.ExecuteFunc) registry.Dynamic {
	return registry.Dynamic{Execute: fn, EagerRequire: eager}
}

func sameMap(a, b any) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
