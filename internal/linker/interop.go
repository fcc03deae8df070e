package linker

import (
	"math"
	"reflect"

	"github.com/vk/modlink/internal/registry"
)

const (
	// DefaultKey holds the wrapped value of a default-interop envelope.
	DefaultKey = "default"
	// UseDefaultKey marks an Exports map as a default-interop envelope.
	UseDefaultKey = "__useDefault"
	// ModuleMarkerKey, set to true, marks dynamic exports as a module object
	// that needs no envelope.
	ModuleMarkerKey = "__esModule"
)

// NewModule returns v unchanged. It exists for hosts that build module objects
// by hand and want to mark the call site.
func NewModule(v any) any {
	return v
}

// WrapDefault puts v in a default-interop envelope.
func WrapDefault(v any) registry.Exports {
	return registry.Exports{DefaultKey: v, UseDefaultKey: true}
}

// Unwrap returns the wrapped value of a default-interop envelope, or v itself.
func Unwrap(v any) any {
	if ex, ok := asExports(v); ok && usesDefault(ex) {
		return ex[DefaultKey]
	}
	return v
}

func asExports(v any) (registry.Exports, bool) {
	switch t := v.(type) {
	case registry.Exports:
		return t, t != nil
	case map[string]any:
		return registry.Exports(t), t != nil
	default:
		return nil, false
	}
}

func usesDefault(ex registry.Exports) bool {
	b, _ := ex[UseDefaultKey].(bool)
	return b
}

func isModuleObject(v any) bool {
	ex, ok := asExports(v)
	if !ok {
		return false
	}
	b, _ := ex[ModuleMarkerKey].(bool)
	return b
}

// depExports turns a value resolved outside the declarative model into the
// Exports map handed to a declarative setter.
func depExports(v any) registry.Exports {
	if ex, ok := asExports(v); ok && (isModuleObject(ex) || usesDefault(ex)) {
		return ex
	}
	return WrapDefault(v)
}

// truthy reports whether v counts as a present value: not nil, false, a
// numeric zero or an empty string.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	default:
		return true
	}
}
