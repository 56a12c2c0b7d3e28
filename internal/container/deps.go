package container

import (
	"context"
	"reflect"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

// Deps is what a factory may resolve from: only the capabilities its
// registration declared.
type Deps interface {
	Source
	// Consumer is the capability being constructed.
	Consumer() quirev1alpha1.CapabilityID
}

type deps struct {
	c        *Container
	consumer quirev1alpha1.CapabilityID
	declared map[quirev1alpha1.CapabilityID]bool
}

func newDeps(c *Container, reg *registration) *deps {
	declared := make(map[quirev1alpha1.CapabilityID]bool, len(reg.capability.Requires))
	for _, req := range reg.capability.Requires {
		declared[req.CapabilityID] = true
	}
	return &deps{c: c, consumer: reg.capability.CapabilityID, declared: declared}
}

func (d *deps) Consumer() quirev1alpha1.CapabilityID { return d.consumer }

func (d *deps) has(id quirev1alpha1.CapabilityID) bool {
	return d.declared[id] && d.c.has(id)
}

func (d *deps) lookup(ctx context.Context, id quirev1alpha1.CapabilityID, typ reflect.Type) (any, error) {
	if !d.declared[id] {
		return nil, &UndeclaredDependencyError{Consumer: d.consumer, CapabilityID: id}
	}
	return d.c.lookup(ctx, id, typ)
}

type inProgressKey struct{}

// withInProgress records id on the chain of constructions running in ctx.
func withInProgress(ctx context.Context, id quirev1alpha1.CapabilityID) context.Context {
	chain, _ := ctx.Value(inProgressKey{}).([]quirev1alpha1.CapabilityID)
	next := make([]quirev1alpha1.CapabilityID, len(chain), len(chain)+1)
	copy(next, chain)
	return context.WithValue(ctx, inProgressKey{}, append(next, id))
}

// inProgress returns the cycle path if id is already being constructed in ctx.
func inProgress(ctx context.Context, id quirev1alpha1.CapabilityID) ([]string, bool) {
	chain, _ := ctx.Value(inProgressKey{}).([]quirev1alpha1.CapabilityID)
	for i, current := range chain {
		if current != id {
			continue
		}
		path := make([]string, 0, len(chain)-i+1)
		for _, c := range chain[i:] {
			path = append(path, string(c))
		}
		return append(path, string(id)), true
	}
	return nil, false
}
