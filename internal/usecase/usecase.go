// Package usecase composes capabilities into single operations for
// presentation code. Every use case receives its dependencies already
// resolved and exposes exactly one method.
package usecase

import (
	"errors"

	"github.com/bayleafwalker/quire/internal/container"
)

// ErrEmptyProductID is returned by PurchaseSubscription for a blank product.
var ErrEmptyProductID = errors.New("product id is required")

// Result is one element of an observable stream: a value or the error that
// produced it.
type Result[T any] struct {
	Value T
	Err   error
}

var (
	ObserveQuotaKey         = container.NewKey[*ObserveQuota]("usecase.observe-quota")
	ListDevicesKey          = container.NewKey[*ListDevices]("usecase.list-devices")
	PurchaseSubscriptionKey = container.NewKey[*PurchaseSubscription]("usecase.purchase-subscription")
	ShareEntryKey           = container.NewKey[*ShareEntry]("usecase.share-entry")
	SaveMigrationStateKey   = container.NewKey[*SaveMigrationState]("usecase.save-migration-state")
	LoadMigrationStateKey   = container.NewKey[*LoadMigrationState]("usecase.load-migration-state")
	SyncHealthKey           = container.NewKey[*SyncHealth]("usecase.sync-health")
	UpdatePresenceKey       = container.NewKey[*UpdatePresence]("usecase.update-presence")
	ListAudienceKey         = container.NewKey[*ListAudience]("usecase.list-audience")
	LocateEntryKey          = container.NewKey[*LocateEntry]("usecase.locate-entry")
)

// Keys lists every use case, in the order the root module requires them.
func Keys() []container.Identifier {
	return []container.Identifier{
		ObserveQuotaKey,
		ListDevicesKey,
		PurchaseSubscriptionKey,
		ShareEntryKey,
		SaveMigrationStateKey,
		LoadMigrationStateKey,
		SyncHealthKey,
		UpdatePresenceKey,
		ListAudienceKey,
		LocateEntryKey,
	}
}
