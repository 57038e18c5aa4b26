package dashboard

import (
	"github.com/gleeworld/gleeworld/internal/access"
	"github.com/gleeworld/gleeworld/internal/registry"
)

// Project produces the ordered list of modules to render. Modules without
// view access are filtered out. A stored order is applied where it names a
// visible module; ids no longer in the registry are silently dropped, and
// registry modules missing from the stored order are appended in registry
// order so newly deployed modules surface without a migration. The output
// is fully determined by its inputs.
func Project(mods []registry.Descriptor, verdicts map[string]access.Resolved, storedOrder []string) []registry.Descriptor {
	visible := make(map[string]registry.Descriptor, len(mods))
	for _, d := range mods {
		if verdicts[d.ID].CanAccess {
			visible[d.ID] = d
		}
	}

	out := make([]registry.Descriptor, 0, len(visible))
	seen := make(map[string]struct{}, len(visible))
	for _, id := range storedOrder {
		if _, dup := seen[id]; dup {
			continue
		}
		d, ok := visible[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, d)
	}
	for _, d := range mods {
		if _, ok := visible[d.ID]; !ok {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}

// CleanOrder drops ids not present in the registry, preserving the given
// order. Stored orders stay forward-compatible as modules come and go.
func CleanOrder(order []string) []string {
	out := make([]string, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, ok := registry.Lookup(id); !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
