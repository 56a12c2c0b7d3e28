package resolver

import (
	"errors"
	"fmt"
	"strings"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/graph"
)

var (
	// ErrMissingRegistration: a required capability has no compatible provider on the platform.
	ErrMissingRegistration = errors.New("missing capability registration")
	// ErrConflictingRegistration: more than one provider registered for one capability.
	ErrConflictingRegistration = errors.New("conflicting capability registrations")
	// ErrDependencyCycle: registrations depend on each other.
	ErrDependencyCycle = graph.ErrCycle
	// ErrInvalidVersion: a registration declares an unparsable contract version.
	ErrInvalidVersion = errors.New("invalid capability version")
	// ErrTypeMismatch: a requirement expects a different contract type than the provider registered.
	ErrTypeMismatch = errors.New("capability type mismatch")
)

type MissingError struct {
	Platform    quirev1alpha1.Platform
	Requirement UnresolvedRequirement
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: %q required by %q on platform %s: %s",
		ErrMissingRegistration, e.Requirement.CapabilityID, e.Requirement.Consumer, e.Platform, e.Requirement.Reason)
}

func (e *MissingError) Is(target error) bool { return target == ErrMissingRegistration }

type ConflictError struct {
	Platform quirev1alpha1.Platform
	Conflict Conflict
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Conflict.Candidates))
	for _, c := range e.Conflict.Candidates {
		name := c.Module
		if c.Variant != "" {
			name += "/" + c.Variant
		}
		names = append(names, name)
	}
	return fmt.Sprintf("%v: %q on platform %s is provided by %s",
		ErrConflictingRegistration, e.Conflict.CapabilityID, e.Platform, strings.Join(names, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflictingRegistration }

// CycleError is the resolver's view of a graph cycle.
type CycleError = graph.CycleError

type InvalidVersionError struct {
	Provider InvalidProvider
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("%v: %q from module %q: %s",
		ErrInvalidVersion, e.Provider.CapabilityID, e.Provider.Module, e.Provider.Reason)
}

func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

// TypeMismatchError matches both ErrTypeMismatch and ErrMissingRegistration:
// the requirement has no provider of the expected type.
type TypeMismatchError struct {
	Platform quirev1alpha1.Platform
	Mismatch TypeMismatch
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%v: %q required by %q on platform %s is provided by %s as %s, requested as %s",
		ErrTypeMismatch, e.Mismatch.CapabilityID, e.Mismatch.Consumer, e.Platform,
		e.Mismatch.Module, e.Mismatch.Provided, e.Mismatch.Requested)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch || target == ErrMissingRegistration
}
