package container

import (
	"context"
	"reflect"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

// DefaultVersion is the contract version of a registration that does not set one.
const DefaultVersion = "1.0.0"

// Factory constructs a provider. It may only resolve the capabilities it
// declared with Needs or NeedsOptional.
type Factory[T any] func(ctx context.Context, deps Deps) (T, error)

// Module groups capability registrations and requirements. A module with a
// platform only participates in builds for that platform.
type Module struct {
	name          string
	platform      quirev1alpha1.Platform
	includes      []*Module
	requires      []quirev1alpha1.RequiredCapability
	registrations []*registration
}

type registration struct {
	module     string
	capability quirev1alpha1.ProvidedCapability
	typ        reflect.Type
	construct  func(ctx context.Context, deps Deps) (any, error)
}

func NewModule(name string) *Module {
	return &Module{name: name}
}

func (m *Module) Name() string { return m.name }

func (m *Module) Platform() quirev1alpha1.Platform { return m.platform }

// ForPlatform restricts the module to builds for p.
func (m *Module) ForPlatform(p quirev1alpha1.Platform) *Module {
	m.platform = p
	return m
}

// Include adds modules that are flattened into every build containing m.
func (m *Module) Include(modules ...*Module) *Module {
	for _, included := range modules {
		if included != nil {
			m.includes = append(m.includes, included)
		}
	}
	return m
}

// Require declares that code reachable from this module needs key on the
// target platform. An empty constraint accepts any version.
func (m *Module) Require(key Identifier, constraint string) *Module {
	m.requires = append(m.requires, quirev1alpha1.RequiredCapability{
		CapabilityID:      key.ID(),
		Type:              typeName(key),
		VersionConstraint: constraint,
		DependencyMode:    quirev1alpha1.DependencyModeRequired,
	})
	return m
}

func (m *Module) RequireOptional(key Identifier) *Module {
	m.requires = append(m.requires, quirev1alpha1.RequiredCapability{
		CapabilityID:   key.ID(),
		DependencyMode: quirev1alpha1.DependencyModeOptional,
		Type:           typeName(key),
	})
	return m
}

// Manifest describes the module without its includes.
func (m *Module) Manifest() quirev1alpha1.ModuleManifest {
	out := quirev1alpha1.ModuleManifest{
		Name:     m.name,
		Platform: m.platform,
		Requires: append([]quirev1alpha1.RequiredCapability(nil), m.requires...),
	}
	for _, reg := range m.registrations {
		out.Provides = append(out.Provides, reg.capability)
	}
	return out
}

type provideOptions struct {
	scope    quirev1alpha1.Scope
	version  string
	variant  string
	requires []quirev1alpha1.RequiredCapability
}

// ProvideOption customizes a registration.
type ProvideOption func(*provideOptions)

// AsSingleton constructs the provider at most once per container. This is the default.
func AsSingleton() ProvideOption {
	return func(o *provideOptions) { o.scope = quirev1alpha1.ScopeSingleton }
}

// AsFactory constructs a new provider on every resolution.
func AsFactory() ProvideOption {
	return func(o *provideOptions) { o.scope = quirev1alpha1.ScopeFactory }
}

// Version sets the contract version the registration offers.
func Version(v string) ProvideOption {
	return func(o *provideOptions) { o.version = v }
}

// Variant names the implementation, e.g. "playstore" or "stub".
func Variant(name string) ProvideOption {
	return func(o *provideOptions) { o.variant = name }
}

// Needs declares required dependencies of the factory.
func Needs(keys ...Identifier) ProvideOption {
	return func(o *provideOptions) {
		for _, k := range keys {
			o.requires = append(o.requires, quirev1alpha1.RequiredCapability{
				CapabilityID:   k.ID(),
				DependencyMode: quirev1alpha1.DependencyModeRequired,
				Type:           typeName(k),
			})
		}
	}
}

// NeedsVersion declares a required dependency constrained to a version range.
func NeedsVersion(key Identifier, constraint string) ProvideOption {
	return func(o *provideOptions) {
		o.requires = append(o.requires, quirev1alpha1.RequiredCapability{
			CapabilityID:      key.ID(),
			Type:              typeName(key),
			VersionConstraint: constraint,
			DependencyMode:    quirev1alpha1.DependencyModeRequired,
		})
	}
}

// NeedsOptional declares dependencies the factory can do without.
func NeedsOptional(keys ...Identifier) ProvideOption {
	return func(o *provideOptions) {
		for _, k := range keys {
			o.requires = append(o.requires, quirev1alpha1.RequiredCapability{
				CapabilityID:   k.ID(),
				DependencyMode: quirev1alpha1.DependencyModeOptional,
				Type:           typeName(k),
			})
		}
	}
}

// Provide registers factory as the provider of key in m.
func Provide[T any](m *Module, key Key[T], factory Factory[T], opts ...ProvideOption) *Module {
	o := provideOptions{scope: quirev1alpha1.ScopeSingleton, version: DefaultVersion}
	for _, opt := range opts {
		opt(&o)
	}
	m.registrations = append(m.registrations, &registration{
		module: m.name,
		capability: quirev1alpha1.ProvidedCapability{
			CapabilityID: key.ID(),
			Version:      o.version,
			Scope:        o.scope,
			Variant:      o.variant,
			Type:         key.TypeName(),
			Requires:     o.requires,
		},
		typ: typeOf[T](),
		construct: func(ctx context.Context, deps Deps) (any, error) {
			return factory(ctx, deps)
		},
	})
	return m
}

// Value registers an already constructed singleton.
func Value[T any](m *Module, key Key[T], v T, opts ...ProvideOption) *Module {
	return Provide(m, key, func(context.Context, Deps) (T, error) { return v, nil }, opts...)
}
