package container

import (
	"reflect"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

// Identifier is anything that names a capability. Every Key is one.
type Identifier interface {
	ID() quirev1alpha1.CapabilityID
}

// Key is a typed capability token. The type parameter is the contract the
// provider must return and the consumer receives.
type Key[T any] struct {
	id quirev1alpha1.CapabilityID
}

func NewKey[T any](id quirev1alpha1.CapabilityID) Key[T] {
	return Key[T]{id: id}
}

func (k Key[T]) ID() quirev1alpha1.CapabilityID { return k.id }

// TypeName is the Go type of the contract, e.g. "capability.SubscriptionBiller".
func (k Key[T]) TypeName() string { return typeOf[T]().String() }

func (k Key[T]) String() string { return string(k.id) + " (" + k.TypeName() + ")" }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// ID adapts a bare capability ID to an Identifier, for requirements on
// capabilities whose Key lives in a package the caller cannot import.
type ID quirev1alpha1.CapabilityID

func (id ID) ID() quirev1alpha1.CapabilityID { return quirev1alpha1.CapabilityID(id) }

// typeName is the contract type of k, or "" for an untyped ID.
func typeName(k Identifier) string {
	if t, ok := k.(interface{ TypeName() string }); ok {
		return t.TypeName()
	}
	return ""
}
