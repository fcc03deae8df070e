package registry

// Exports is the shared export object of a module. Declarative importers hold
// the same map, so writes made through an ExportSetter are visible to every
// holder immediately.
type Exports map[string]any

// ExportSetter publishes a single named export of a declarative module and
// returns the value it was given.
type ExportSetter func(key string, value any) any

// Setter receives the export object of one dependency. Setters are index
// aligned with the module's dependency list.
type Setter func(deps Exports)

// Declaration is what a declarative factory hands back to the linker.
type Declaration struct {
	Setters []Setter
	Execute func() error
}

// DeclareFunc is the factory of a declarative module. It is invoked exactly
// once, when the module is linked.
type DeclareFunc func(export ExportSetter) (Declaration, error)

// RequireFunc resolves one of the declared dependencies of a dynamic module
// to its export value.
type RequireFunc func(name string) (any, error)

// DynamicModule is the module handle passed to a dynamic factory.
type DynamicModule struct {
	Exports any
	ID      string
}

// ExecuteFunc is the factory of a dynamic module. A non-empty return value
// replaces module.Exports wholesale.
type ExecuteFunc func(require RequireFunc, exports Exports, module *DynamicModule) (any, error)

// Body selects the binding model of an Entry. It is implemented only by
// Declarative and Dynamic.
type Body interface {
	isBody()
}

// Declarative is the body of a module with live, mutually updating bindings.
type Declarative struct {
	Declare DeclareFunc
}

// Dynamic is the body of a module whose exports are computed once.
type Dynamic struct {
	Execute ExecuteFunc
	// EagerRequire leaves dependency linking to the require calls made by
	// the body itself instead of linking the whole subtree up front.
	EagerRequire bool
}

func (Declarative) isBody() {}
func (Dynamic) isBody()     {}

// Kind names the binding model for logs.
func Kind(b Body) string {
	switch b.(type) {
	case Declarative, *Declarative:
		return "declarative"
	case Dynamic, *Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}
