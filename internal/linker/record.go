package linker

import (
	"slices"

	"github.com/vk/modlink/internal/registry"
)

// Record is the long-lived state of one declarative module. It outlives the
// registry entry it was linked from, so later importers keep sharing the same
// Exports map.
type Record struct {
	name    string
	exports registry.Exports
	// dependencies is index aligned with the entry's dependency list. A nil
	// slot is a dependency that cannot push live updates.
	dependencies []*Record
	importers    []*Record
	setters      []registry.Setter
	execute      func() error
	// publishing is set while the record's export setter is pushing an
	// update, so a cycle leading back here does not push again.
	publishing bool
}

// Name returns the module name of the record.
func (r *Record) Name() string {
	return r.name
}

// Exports returns the shared export map.
func (r *Record) Exports() registry.Exports {
	return r.exports
}

// Importers returns the names of the declarative modules importing r.
func (r *Record) Importers() []string {
	names := make([]string, 0, len(r.importers))
	for _, imp := range r.importers {
		names = append(names, imp.name)
	}
	return names
}

// setExport is the ExportSetter handed to the module's declare factory.
func (r *Record) setExport(key string, value any) any {
	prev := r.publishing
	r.publishing = true
	defer func() { r.publishing = prev }()

	r.exports[key] = value
	for _, imp := range r.importers {
		if imp.publishing {
			continue
		}
		for j, dep := range imp.dependencies {
			if dep == r {
				imp.callSetter(j, r.exports)
			}
		}
	}
	return value
}

func (r *Record) addImporter(imp *Record) {
	if !slices.Contains(r.importers, imp) {
		r.importers = append(r.importers, imp)
	}
}

func (r *Record) callSetter(i int, exports registry.Exports) {
	if i < len(r.setters) && r.setters[i] != nil {
		r.setters[i](exports)
	}
}

// record returns the record for name, creating an empty one on first use.
func (l *Loader) record(name string) *Record {
	if rec, ok := l.records[name]; ok {
		return rec
	}
	rec := &Record{name: name, exports: registry.Exports{}}
	l.records[name] = rec
	return rec
}
