package dag

import (
	"fmt"
	"sort"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID and kind to the graph. If a node
// with the same ID already exists, its kind is updated unless kind is
// KindExternal, so a declaration always wins over an earlier reference.
func (g *Graph) AddNode(id, kind string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n, ok := g.nodes[id]; ok {
		if kind != KindExternal {
			n.kind = kind
		}
		return
	}

	g.nodes[id] = &node{
		id:         id,
		kind:       kind,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` imports `fromID`. An edge from a node to itself
// is recorded as a self reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if fromID == toID {
		fromNode.selfRef = true
		return nil
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Len returns the number of nodes, external ones included.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Kind returns the kind of the node with the given ID.
func (g *Graph) Kind(id string) (string, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return "", false
	}
	return n.kind, true
}

// Dependencies returns the sorted IDs of the nodes the given node imports.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs of the nodes that import the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// External returns the sorted IDs of the nodes no manifest declares.
func (g *Graph) External() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var ids []string
	for id, n := range g.nodes {
		if n.kind == KindExternal {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// DetectCycles returns a non-nil error naming the first cycle found, in
// sorted order.
func (g *Graph) DetectCycles() error {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	return fmt.Errorf("cycle detected involving nodes '%s'", strings.Join(cycles[0], "', '"))
}

// Cycles returns every strongly connected component that forms a cycle:
// groups of two or more modules, or a module that imports itself. Members
// of each cycle are sorted, and cycles are ordered by their first member.
func (g *Graph) Cycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Tarjan's algorithm, iterating nodes in sorted order for stable output.
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var cycles [][]string
	next := 0

	var visit func(n *node)
	visit = func(n *node) {
		index[n.id] = next
		low[n.id] = next
		next++
		stack = append(stack, n.id)
		onStack[n.id] = true

		for _, depID := range sortedKeys(n.deps) {
			if _, seen := index[depID]; !seen {
				visit(n.deps[depID])
				low[n.id] = min(low[n.id], low[depID])
			} else if onStack[depID] {
				low[n.id] = min(low[n.id], index[depID])
			}
		}

		if low[n.id] != index[n.id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == n.id {
				break
			}
		}
		if len(component) > 1 || n.selfRef {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}

	for _, id := range sortedKeys(g.nodes) {
		if _, seen := index[id]; !seen {
			visit(g.nodes[id])
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// MixedCycles returns the cycles whose members do not all share one kind.
func (g *Graph) MixedCycles() [][]string {
	var mixed [][]string
	for _, cycle := range g.Cycles() {
		kinds := make(map[string]struct{})
		for _, id := range cycle {
			kind, _ := g.Kind(id)
			kinds[kind] = struct{}{}
		}
		if len(kinds) > 1 {
			mixed = append(mixed, cycle)
		}
	}
	return mixed
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
