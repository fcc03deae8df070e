// Package registry holds the table of module declarations waiting to be linked.
//
// Every call to Register produces an Entry keyed by module name. An Entry
// carries its ordered, de-duplicated dependency names and a Body that selects
// one of two binding models:
//
//   - Declarative: the module publishes named exports through a setter
//     callback and receives live updates from its own dependencies.
//   - Dynamic: the module runs a factory once and its exports are a
//     snapshot of whatever the factory produced.
//
// The first registration for a name always wins. Later registrations for the
// same name are ignored so that a module cannot be redefined while a graph
// walk is in progress.
//
// Entries are mutated in place by the linker (group index, bound module,
// evaluated flag) and removed once the top-level load that owns them
// completes.
package registry
