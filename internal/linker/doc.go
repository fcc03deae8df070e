// Package linker resolves, links and evaluates the modules held in a
// registry.Registry.
//
// # Binding models
//
// Two incompatible binding models share one dependency graph:
//
//   - Declarative modules own a Record whose Exports map is shared with every
//     importer. Each write through the module's ExportSetter is pushed
//     synchronously to the setters of all importers that are not themselves in
//     the middle of publishing an export.
//   - Dynamic modules run their factory once and expose whatever it produced.
//     Consumers get a snapshot; no update is pushed after the factory returns.
//
// # Linking
//
// A top-level Load walks the graph from the requested entry and partitions the
// reachable, not yet evaluated entries into groups. The group index of an
// entry is the number of binding-model transitions on the longest discovered
// path from the root. Groups are linked from the highest index down to zero,
// alternating between the declarative and dynamic procedures, so every
// dependency is bound before its dependents. A cycle whose transitions cannot
// be laid out this way fails with ErrMixedCycle.
//
// # Evaluation
//
// Dynamic bodies run while they are linked. Declarative bodies run afterwards
// in a depth-first, left-to-right walk that skips names already on the current
// path. A module taking part in a cycle runs when its name is first reached,
// so the other side of the cycle observes a partially populated Exports map.
//
// Every body runs at most once for the lifetime of a Loader. A failed Load
// does not roll back modules that were already evaluated.
//
// # Concurrency
//
// A Loader is not safe for concurrent use. All work is synchronous call-stack
// recursion; re-entrancy is contained by the per-walk seen set and the
// per-record publishing guard.
package linker
