package linker

import (
	"fmt"
	"slices"

	"github.com/vk/modlink/internal/registry"
)

// groupBuilder partitions the entries reachable from a root into groups
// keyed by the number of binding-model transitions on the longest path found
// from the root.
type groupBuilder struct {
	reg    *registry.Registry
	groups [][]*registry.Entry
	index  map[*registry.Entry]int
}

// buildGroups returns the groups reachable from root, indexed by group index.
// Entries that are missing from the registry or already evaluated are left
// out.
func buildGroups(reg *registry.Registry, root *registry.Entry) ([][]*registry.Entry, error) {
	b := &groupBuilder{
		reg:   reg,
		index: map[*registry.Entry]int{root: 0},
	}
	root.GroupIndex = 0
	if err := b.visit(root); err != nil {
		return nil, err
	}
	return b.groups, nil
}

func (b *groupBuilder) visit(e *registry.Entry) error {
	gi := b.index[e]
	for len(b.groups) <= gi {
		b.groups = append(b.groups, nil)
	}
	if slices.Contains(b.groups[gi], e) {
		return nil
	}
	b.groups[gi] = append(b.groups[gi], e)

	for _, depName := range e.NormalizedDeps {
		dep, ok := b.reg.Lookup(depName)
		if !ok || dep.Evaluated {
			continue
		}

		candidate := gi
		if dep.IsDeclarative() != e.IsDeclarative() {
			candidate++
		}

		current, grouped := b.index[dep]
		if !grouped || current < candidate {
			if grouped {
				if err := b.remove(current, dep); err != nil {
					return err
				}
			}
			b.index[dep] = candidate
			dep.GroupIndex = candidate
		}

		if err := b.visit(dep); err != nil {
			return err
		}
	}
	return nil
}

// remove takes e out of group gi. Draining a group means the cycle through e
// cannot be laid out as alternating groups.
func (b *groupBuilder) remove(gi int, e *registry.Entry) error {
	group := b.groups[gi]
	i := slices.Index(group, e)
	if i < 0 {
		return nil
	}
	b.groups[gi] = slices.Delete(group, i, i+1)
	if len(b.groups[gi]) == 0 {
		return fmt.Errorf("%w: moving '%s' out of group %d leaves it empty", ErrMixedCycle, e.Name, gi)
	}
	return nil
}
