package v1alpha1

// Binding records how one requirement was satisfied.
//
// Consumer is either a module name (module-level requirement) or
// "<module>/<capabilityId>" for a registration's own dependency.
type Binding struct {
	CapabilityID CapabilityID    `json:"capabilityId" yaml:"capabilityId"`
	Consumer     string          `json:"consumer" yaml:"consumer"`
	Requirement  RequirementHint `json:"requirement" yaml:"requirement"`
	Provider     ProviderRef     `json:"provider" yaml:"provider"`
}

type RequirementHint struct {
	VersionConstraint string         `json:"versionConstraint,omitempty" yaml:"versionConstraint,omitempty"`
	DependencyMode    DependencyMode `json:"dependencyMode,omitempty" yaml:"dependencyMode,omitempty"`
}

type ProviderRef struct {
	Module            string `json:"module" yaml:"module"`
	Variant           string `json:"variant,omitempty" yaml:"variant,omitempty"`
	CapabilityVersion string `json:"capabilityVersion,omitempty" yaml:"capabilityVersion,omitempty"`
	Scope             Scope  `json:"scope" yaml:"scope"`
}
