package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrRegistration is returned when a registration cannot be stored.
var ErrRegistration = errors.New("invalid module registration")

// Entry is one registered module that has not yet been fully linked.
type Entry struct {
	// Name is the registry key. It never changes once set.
	Name string
	// Deps is the declared dependency list with duplicates removed.
	Deps []string
	// NormalizedDeps is the resolved dependency list. Name resolution is
	// done by the host, so it carries the same names as Deps.
	NormalizedDeps []string
	// Body selects the binding model.
	Body Body

	// GroupIndex is the group the entry was last assigned to while linking,
	// or -1 when it was never grouped.
	GroupIndex int
	// Module is the bound module, set the first time the entry is linked.
	// The linker stores its own record type for declarative entries and a
	// *DynamicModule for dynamic ones.
	Module any
	// Evaluated guards the module body against a second execution.
	Evaluated bool
}

// IsDeclarative reports whether the entry uses live bindings.
func (e *Entry) IsDeclarative() bool {
	_, ok := e.Body.(Declarative)
	return ok
}

// Declarative returns the declarative body of the entry.
func (e *Entry) Declarative() (Declarative, bool) {
	d, ok := e.Body.(Declarative)
	return d, ok
}

// Dynamic returns the dynamic body of the entry.
func (e *Entry) Dynamic() (Dynamic, bool) {
	d, ok := e.Body.(Dynamic)
	return d, ok
}

// Registry is the name-keyed table of entries for one loader instance. It is
// not safe for concurrent use; linking is fully synchronous.
type Registry struct {
	entries map[string]*Entry
	logger  *slog.Logger
}

// New creates and initializes a new Registry instance.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Register stores a module declaration. If the name is already registered the
// stored entry is kept as is and returned, whatever the new body is.
func (r *Registry) Register(name string, deps []string, body Body) (*Entry, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: module name must be a non-empty string", ErrRegistration)
	}
	if existing, ok := r.entries[name]; ok {
		r.logger.Warn("Module already registered, keeping the first registration.", "module", name)
		return existing, nil
	}

	body, err := normalizeBody(body)
	if err != nil {
		return nil, fmt.Errorf("%w: module '%s': %v", ErrRegistration, name, err)
	}

	deduped := Dedupe(deps)

	entry := &Entry{
		Name:           name,
		Deps:           deduped,
		NormalizedDeps: deduped,
		Body:           body,
		GroupIndex:     -1,
	}
	r.entries[name] = entry
	r.logger.Debug("Registered module.", "module", name, "kind", Kind(body), "deps", deduped)
	return entry, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Delete removes the entry for name. Deleting an unknown name is a no-op.
func (r *Registry) Delete(name string) {
	delete(r.entries, name)
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dedupe returns deps with duplicates removed, keeping the first occurrence of
// each name in its original position.
func Dedupe(deps []string) []string {
	out := make([]string, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func normalizeBody(body Body) (Body, error) {
	switch b := body.(type) {
	case Declarative:
		if b.Declare == nil {
			return nil, errors.New("declarative body has no declare function")
		}
		return b, nil
	case *Declarative:
		if b == nil {
			return nil, errors.New("nil body")
		}
		return normalizeBody(*b)
	case Dynamic:
		if b.Execute == nil {
			return nil, errors.New("dynamic body has no execute function")
		}
		return b, nil
	case *Dynamic:
		if b == nil {
			return nil, errors.New("nil body")
		}
		return normalizeBody(*b)
	default:
		return nil, errors.New("nil body")
	}
}
