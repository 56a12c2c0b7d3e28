package container

import (
	"errors"
	"fmt"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/resolver"
)

var (
	ErrMissingRegistration     = resolver.ErrMissingRegistration
	ErrConflictingRegistration = resolver.ErrConflictingRegistration
	ErrDependencyCycle         = resolver.ErrDependencyCycle
	// ErrTypeMismatch: a key's type does not match the registered provider's type.
	ErrTypeMismatch = resolver.ErrTypeMismatch
	// ErrUndeclaredDependency: a factory resolved a capability it did not declare.
	ErrUndeclaredDependency = errors.New("undeclared capability dependency")
	// ErrDuplicateModule: two distinct modules share a name.
	ErrDuplicateModule = errors.New("duplicate module name")
	ErrClosed          = errors.New("container closed")
)

type TypeMismatchError struct {
	CapabilityID quirev1alpha1.CapabilityID
	Registered   string
	Requested    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%v: %q is registered as %s, requested as %s",
		ErrTypeMismatch, e.CapabilityID, e.Registered, e.Requested)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

type UndeclaredDependencyError struct {
	Consumer     quirev1alpha1.CapabilityID
	CapabilityID quirev1alpha1.CapabilityID
}

func (e *UndeclaredDependencyError) Error() string {
	return fmt.Sprintf("%v: %q resolved %q without declaring it",
		ErrUndeclaredDependency, e.Consumer, e.CapabilityID)
}

func (e *UndeclaredDependencyError) Is(target error) bool { return target == ErrUndeclaredDependency }
