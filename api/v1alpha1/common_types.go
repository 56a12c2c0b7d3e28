package v1alpha1

// NOTE: These types describe provisioning, not behavior. The container builds
// them from Go registrations; the resolver and the wiring CLI only read them.

type CapabilityID string

type Scope string

type DependencyMode string

type Platform string

const (
	// ScopeSingleton providers are constructed once per container.
	ScopeSingleton Scope = "singleton"
	// ScopeFactory providers are constructed on every resolution.
	ScopeFactory Scope = "factory"

	DependencyModeRequired DependencyMode = "required"
	DependencyModeOptional DependencyMode = "optional"

	// PlatformShared marks modules that participate on every platform.
	PlatformShared  Platform = ""
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformDesktop Platform = "desktop"
	PlatformWeb     Platform = "web"
)

// Platforms lists every build target in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformAndroid, PlatformIOS, PlatformDesktop, PlatformWeb}
}

// ParsePlatform maps a flag value to a Platform.
func ParsePlatform(raw string) (Platform, bool) {
	for _, p := range Platforms() {
		if string(p) == raw {
			return p, true
		}
	}
	return PlatformShared, false
}

// Matches reports whether a module declared for p participates on target.
func (p Platform) Matches(target Platform) bool {
	return p == PlatformShared || p == target
}

func (p Platform) String() string {
	if p == PlatformShared {
		return "shared"
	}
	return string(p)
}

// Normalize fills empty scope and dependency mode fields with their defaults.
func (s Scope) Normalize() Scope {
	if s == "" {
		return ScopeSingleton
	}
	return s
}

func (m DependencyMode) Normalize() DependencyMode {
	if m == "" {
		return DependencyModeRequired
	}
	return m
}
