// Package env_vars serves the process environment as a host module.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/modlink/internal/registry"
)

// Name is the module name manifests import the environment under.
const Name = "host/env"

// Resolve is a linker.ExternalLoader. It answers Name with a map of every
// environment variable and leaves all other names unresolved.
func Resolve(_ context.Context, name string) (any, error) {
	if name != Name {
		return nil, nil
	}

	env := registry.Exports{}
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if ok && key != "" {
			env[key] = value
		}
	}
	return env, nil
}
