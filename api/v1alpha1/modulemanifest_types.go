package v1alpha1

// ModuleManifest declares one provisioning module: the capabilities it
// registers and the capabilities its own code consumes.
//
// A module with an empty Platform is shared and participates on every build
// target. Platform-specific modules only participate on their target.
type ModuleManifest struct {
	Name     string               `json:"name" yaml:"name"`
	Platform Platform             `json:"platform,omitempty" yaml:"platform,omitempty"`
	Provides []ProvidedCapability `json:"provides,omitempty" yaml:"provides,omitempty"`
	Requires []RequiredCapability `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// ProvidedCapability is a single registration: capability token to factory.
type ProvidedCapability struct {
	CapabilityID CapabilityID `json:"capabilityId" yaml:"capabilityId"`
	Version      string       `json:"version" yaml:"version"`
	Scope        Scope        `json:"scope" yaml:"scope"`
	// Variant names the concrete implementation, e.g. "playstore" or "stub".
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
	// Type is the Go type of the provided value, for diagnostics only.
	Type     string               `json:"type,omitempty" yaml:"type,omitempty"`
	Requires []RequiredCapability `json:"requires,omitempty" yaml:"requires,omitempty"`
}

type RequiredCapability struct {
	CapabilityID      CapabilityID   `json:"capabilityId" yaml:"capabilityId"`
	VersionConstraint string         `json:"versionConstraint,omitempty" yaml:"versionConstraint,omitempty"`
	DependencyMode    DependencyMode `json:"dependencyMode,omitempty" yaml:"dependencyMode,omitempty"`
	// Type is the contract type the consumer expects, when known.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}
