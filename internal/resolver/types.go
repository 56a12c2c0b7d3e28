package resolver

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

// RootConsumer names module-level requirements in bindings and diagnostics
// when the requiring module has no name.
const RootConsumer = "root"

// Input is the normalized view of everything registered for a build.
type Input struct {
	Platform quirev1alpha1.Platform
	Modules  []quirev1alpha1.ModuleManifest
}

// Plan is the validated provisioning graph for one platform.
type Plan struct {
	Platform quirev1alpha1.Platform `json:"platform" yaml:"platform"`
	// Providers maps each capability to the single registration that serves it.
	Providers map[quirev1alpha1.CapabilityID]Provider `json:"providers" yaml:"providers"`
	Bindings  []quirev1alpha1.Binding                  `json:"bindings" yaml:"bindings"`
	// Order lists capabilities with dependencies before their dependents.
	// It is empty when the graph has a cycle.
	Order       []quirev1alpha1.CapabilityID `json:"order" yaml:"order"`
	Diagnostics Diagnostics                  `json:"diagnostics" yaml:"diagnostics"`
}

// Provider is the registration selected for a capability.
type Provider struct {
	Module     string                           `json:"module" yaml:"module"`
	Platform   quirev1alpha1.Platform           `json:"platform,omitempty" yaml:"platform,omitempty"`
	Capability quirev1alpha1.ProvidedCapability `json:"capability" yaml:"capability"`
}

// Diagnostics captures everything that keeps a plan from being usable.
//
// Only UnresolvedOptional is informational; every other field makes Err non-nil.
type Diagnostics struct {
	UnresolvedRequired []UnresolvedRequirement `json:"unresolvedRequired,omitempty" yaml:"unresolvedRequired,omitempty"`
	UnresolvedOptional []UnresolvedRequirement `json:"unresolvedOptional,omitempty" yaml:"unresolvedOptional,omitempty"`
	Conflicts          []Conflict              `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Cycles             [][]string              `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	InvalidProviders   []InvalidProvider       `json:"invalidProviders,omitempty" yaml:"invalidProviders,omitempty"`
	TypeMismatches     []TypeMismatch          `json:"typeMismatches,omitempty" yaml:"typeMismatches,omitempty"`
}

type UnresolvedRequirement struct {
	Consumer          string                     `json:"consumer" yaml:"consumer"`
	CapabilityID      quirev1alpha1.CapabilityID `json:"capabilityId" yaml:"capabilityId"`
	VersionConstraint string                     `json:"versionConstraint,omitempty" yaml:"versionConstraint,omitempty"`
	Reason            string                     `json:"reason" yaml:"reason"`
}

// Conflict lists every registration competing for one capability.
type Conflict struct {
	CapabilityID quirev1alpha1.CapabilityID `json:"capabilityId" yaml:"capabilityId"`
	Candidates   []quirev1alpha1.ProviderRef `json:"candidates" yaml:"candidates"`
}

// TypeMismatch is a requirement whose expected contract type differs from
// the type the selected provider registered.
type TypeMismatch struct {
	Consumer     string                     `json:"consumer" yaml:"consumer"`
	CapabilityID quirev1alpha1.CapabilityID `json:"capabilityId" yaml:"capabilityId"`
	Module       string                     `json:"module" yaml:"module"`
	Provided     string                     `json:"provided" yaml:"provided"`
	Requested    string                     `json:"requested" yaml:"requested"`
}

type InvalidProvider struct {
	CapabilityID quirev1alpha1.CapabilityID `json:"capabilityId" yaml:"capabilityId"`
	Module       string                     `json:"module" yaml:"module"`
	Version      string                     `json:"version" yaml:"version"`
	Reason       string                     `json:"reason" yaml:"reason"`
}

// Empty reports whether there is nothing blocking the plan.
func (d Diagnostics) Empty() bool {
	return len(d.UnresolvedRequired) == 0 &&
		len(d.Conflicts) == 0 &&
		len(d.Cycles) == 0 &&
		len(d.InvalidProviders) == 0 &&
		len(d.TypeMismatches) == 0
}

// Err aggregates every blocking diagnostic into one error. It returns nil
// for a usable plan. The aggregate matches ErrMissingRegistration,
// ErrConflictingRegistration, ErrDependencyCycle, ErrInvalidVersion and
// ErrTypeMismatch through errors.Is.
func (p Plan) Err() error {
	d := p.Diagnostics
	errs := make([]error, 0)
	for _, c := range d.Conflicts {
		errs = append(errs, &ConflictError{Platform: p.Platform, Conflict: c})
	}
	for _, ip := range d.InvalidProviders {
		errs = append(errs, &InvalidVersionError{Provider: ip})
	}
	for _, u := range d.UnresolvedRequired {
		errs = append(errs, &MissingError{Platform: p.Platform, Requirement: u})
	}
	for _, m := range d.TypeMismatches {
		errs = append(errs, &TypeMismatchError{Platform: p.Platform, Mismatch: m})
	}
	for _, c := range d.Cycles {
		errs = append(errs, &CycleError{Path: c})
	}
	return utilerrors.NewAggregate(errs)
}
