package resolver

import (
	"context"
	"sort"
	"strings"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/graph"
	"github.com/bayleafwalker/quire/internal/semver"
)

// DefaultResolver is the resolver used by the container and the wiring CLI.
type DefaultResolver struct{}

type provider struct {
	moduleName string
	platform   quirev1alpha1.Platform
	capability quirev1alpha1.ProvidedCapability
	version    semver.Version
}

func NewDefault() *DefaultResolver {
	return &DefaultResolver{}
}

func (r *DefaultResolver) Resolve(ctx context.Context, in Input) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Platform:  in.Platform,
		Providers: make(map[quirev1alpha1.CapabilityID]Provider),
	}

	// 1) Collect candidates from participating modules.
	candidates := make(map[quirev1alpha1.CapabilityID][]provider)
	participating := make([]quirev1alpha1.ModuleManifest, 0, len(in.Modules))
	for _, module := range in.Modules {
		if !module.Platform.Matches(in.Platform) {
			continue
		}
		participating = append(participating, module)
		for _, provided := range module.Provides {
			provided.Version = strings.TrimSpace(provided.Version)
			provided.Scope = provided.Scope.Normalize()
			v, err := semver.ParseVersion(provided.Version)
			if err != nil {
				plan.Diagnostics.InvalidProviders = append(plan.Diagnostics.InvalidProviders, InvalidProvider{
					CapabilityID: provided.CapabilityID,
					Module:       module.Name,
					Version:      provided.Version,
					Reason:       err.Error(),
				})
				continue
			}
			candidates[provided.CapabilityID] = append(candidates[provided.CapabilityID], provider{
				moduleName: module.Name,
				platform:   module.Platform,
				capability: provided,
				version:    v,
			})
		}
	}

	// 2) Exactly one provider per capability. Ambiguity is never settled by
	// registration order.
	selected := make(map[quirev1alpha1.CapabilityID]provider, len(candidates))
	for _, id := range sortedIDs(candidates) {
		list := candidates[id]
		if len(list) > 1 {
			plan.Diagnostics.Conflicts = append(plan.Diagnostics.Conflicts, newConflict(id, list))
			continue
		}
		p := list[0]
		selected[id] = p
		plan.Providers[id] = Provider{Module: p.moduleName, Platform: p.platform, Capability: p.capability}
	}

	// 3) Match every requirement against the selected providers.
	g := graph.New()
	for id := range selected {
		g.AddNode(string(id))
	}
	for _, module := range participating {
		consumer := module.Name
		if consumer == "" {
			consumer = RootConsumer
		}
		for _, req := range module.Requires {
			r.bind(&plan, selected, candidates, consumer, req)
		}
		for _, provided := range module.Provides {
			p, ok := selected[provided.CapabilityID]
			if !ok || p.moduleName != module.Name {
				// Conflicting or invalid registrations are already reported.
				continue
			}
			consumer := module.Name + "/" + string(provided.CapabilityID)
			for _, req := range provided.Requires {
				if r.bind(&plan, selected, candidates, consumer, req) {
					g.AddEdge(string(provided.CapabilityID), string(req.CapabilityID))
				}
			}
		}
	}

	// 4) Reject cycles and compute construction order.
	plan.Diagnostics.Cycles = g.Cycles()
	if len(plan.Diagnostics.Cycles) == 0 {
		order, err := g.TopologicalOrder()
		if err != nil {
			return Plan{}, err
		}
		for _, id := range order {
			plan.Order = append(plan.Order, quirev1alpha1.CapabilityID(id))
		}
	}

	sortBindings(plan.Bindings)
	sortUnresolved(plan.Diagnostics.UnresolvedRequired)
	sortUnresolved(plan.Diagnostics.UnresolvedOptional)

	return plan, nil
}

// bind records a binding for req or an unresolved diagnostic. It reports
// whether a provider was bound.
func (r *DefaultResolver) bind(
	plan *Plan,
	selected map[quirev1alpha1.CapabilityID]provider,
	candidates map[quirev1alpha1.CapabilityID][]provider,
	consumer string,
	req quirev1alpha1.RequiredCapability,
) bool {
	rawConstraint := strings.TrimSpace(req.VersionConstraint)
	if rawConstraint == "" {
		rawConstraint = semver.AnyConstraint
	}
	mode := req.DependencyMode.Normalize()

	constraint, err := semver.ParseConstraint(rawConstraint)
	if err != nil {
		addUnresolved(&plan.Diagnostics, consumer, req, rawConstraint, "invalid versionConstraint")
		return false
	}

	p, ok := selected[req.CapabilityID]
	if !ok {
		if len(candidates[req.CapabilityID]) > 1 {
			// The conflict is the root cause and is reported on its own.
			return false
		}
		addUnresolved(&plan.Diagnostics, consumer, req, rawConstraint, "no provider registered")
		return false
	}
	if !semver.Satisfies(p.version, constraint) {
		addUnresolved(&plan.Diagnostics, consumer, req, rawConstraint,
			"provider "+p.moduleName+" offers version "+p.version.String())
		return false
	}
	if req.Type != "" && p.capability.Type != "" && req.Type != p.capability.Type {
		// Blocking regardless of dependency mode.
		plan.Diagnostics.TypeMismatches = append(plan.Diagnostics.TypeMismatches, TypeMismatch{
			Consumer:     consumer,
			CapabilityID: req.CapabilityID,
			Module:       p.moduleName,
			Provided:     p.capability.Type,
			Requested:    req.Type,
		})
		return false
	}

	plan.Bindings = append(plan.Bindings, quirev1alpha1.Binding{
		CapabilityID: req.CapabilityID,
		Consumer:     consumer,
		Requirement: quirev1alpha1.RequirementHint{
			VersionConstraint: rawConstraint,
			DependencyMode:    mode,
		},
		Provider: quirev1alpha1.ProviderRef{
			Module:            p.moduleName,
			Variant:           p.capability.Variant,
			CapabilityVersion: p.capability.Version,
			Scope:             p.capability.Scope,
		},
	})
	return true
}

func addUnresolved(diag *Diagnostics, consumer string, req quirev1alpha1.RequiredCapability, constraint, reason string) {
	unresolved := UnresolvedRequirement{
		Consumer:          consumer,
		CapabilityID:      req.CapabilityID,
		VersionConstraint: constraint,
		Reason:            reason,
	}
	if req.DependencyMode == quirev1alpha1.DependencyModeOptional {
		diag.UnresolvedOptional = append(diag.UnresolvedOptional, unresolved)
		return
	}
	diag.UnresolvedRequired = append(diag.UnresolvedRequired, unresolved)
}

func newConflict(id quirev1alpha1.CapabilityID, list []provider) Conflict {
	refs := make([]quirev1alpha1.ProviderRef, 0, len(list))
	for _, p := range list {
		refs = append(refs, quirev1alpha1.ProviderRef{
			Module:            p.moduleName,
			Variant:           p.capability.Variant,
			CapabilityVersion: p.capability.Version,
			Scope:             p.capability.Scope,
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Module != refs[j].Module {
			return refs[i].Module < refs[j].Module
		}
		return refs[i].Variant < refs[j].Variant
	})
	return Conflict{CapabilityID: id, Candidates: refs}
}

func sortedIDs(m map[quirev1alpha1.CapabilityID][]provider) []quirev1alpha1.CapabilityID {
	ids := make([]quirev1alpha1.CapabilityID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortBindings(bindings []quirev1alpha1.Binding) {
	sort.Slice(bindings, func(i, j int) bool {
		a := bindings[i]
		b := bindings[j]
		if a.Consumer != b.Consumer {
			return a.Consumer < b.Consumer
		}
		if a.CapabilityID != b.CapabilityID {
			return a.CapabilityID < b.CapabilityID
		}
		return a.Provider.Module < b.Provider.Module
	})
}

func sortUnresolved(list []UnresolvedRequirement) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Consumer != list[j].Consumer {
			return list[i].Consumer < list[j].Consumer
		}
		return list[i].CapabilityID < list[j].CapabilityID
	})
}
