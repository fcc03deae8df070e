package dag

import "sync"

// KindExternal marks a node that is imported but not declared in any
// manifest. The linker resolves such names through its external loader.
const KindExternal = "external"

// Graph is a collection of module nodes and their import edges.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by module name.
	nodes map[string]*node
}

// node represents a single module. It is un-exported to enforce interaction
// with the graph via the public API (using string IDs), not by direct struct
// manipulation.
type node struct {
	id string
	// kind is the binding model of the module, or KindExternal.
	kind string
	// selfRef is set when the module imports itself.
	selfRef bool
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
