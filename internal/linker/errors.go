package linker

import (
	"errors"
	"fmt"

	"github.com/vk/modlink/internal/registry"
)

var (
	// ErrRegistration is re-exported from the registry for callers that only
	// import the linker.
	ErrRegistration = registry.ErrRegistration
	// ErrMixedCycle reports a cycle across binding models that cannot be
	// linearized into alternating groups.
	ErrMixedCycle = errors.New("mixed dependency cycle detected")
	// ErrMalformedDeclarative reports a declare factory that did not return
	// both setters and an execute body.
	ErrMalformedDeclarative = errors.New("invalid declarative module form")
	// ErrUndeclaredDependency reports a require call for a name the dynamic
	// module never declared.
	ErrUndeclaredDependency = errors.New("module not declared as a dependency")
	// ErrUnresolvable reports a name found neither in the registry nor through
	// the external loader.
	ErrUnresolvable = errors.New("unable to load dependency")
	// ErrModuleNotPresent reports a Load for a name that was never registered.
	ErrModuleNotPresent = errors.New("module not present")
)

// LoadError names the top-level module whose Load failed.
type LoadError struct {
	Module string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load '%s': %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// reason maps an error to the label used by the failure counter.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrModuleNotPresent):
		return "not_present"
	case errors.Is(err, ErrMixedCycle):
		return "mixed_cycle"
	case errors.Is(err, ErrMalformedDeclarative):
		return "malformed"
	case errors.Is(err, ErrUndeclaredDependency):
		return "undeclared_dependency"
	case errors.Is(err, ErrUnresolvable):
		return "unresolvable"
	default:
		return "body"
	}
}
