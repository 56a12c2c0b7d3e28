// Package capability declares the platform-independent contracts that
// platform variants implement, and the container keys they are provided under.
//
// Each contract documents its error contract: the sentinel errors callers may
// match with errors.Is. Any other error is a provider failure and must be
// surfaced, not swallowed.
package capability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/domain"
)

var (
	// ErrNotFound: the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBillingUnsupported: the platform has no store to purchase from.
	ErrBillingUnsupported = errors.New("billing is not supported on this platform")
	// ErrPurchaseCancelled: the user dismissed the purchase flow.
	ErrPurchaseCancelled = errors.New("purchase cancelled")
	// ErrSharingUnsupported: no share target is available.
	ErrSharingUnsupported = errors.New("sharing is not supported on this platform")
	// ErrHealthUnavailable: the platform has no health data source.
	ErrHealthUnavailable = errors.New("health data is not available on this platform")
	// ErrLocationUnavailable: no fix is known yet or location is disabled.
	ErrLocationUnavailable = errors.New("location is not available")
	// ErrNotImplemented: the capability is a placeholder.
	ErrNotImplemented = errors.New("not implemented")
)

// SubscriptionBiller sells and reports subscriptions.
//
// Error Contract:
//   - ErrBillingUnsupported from Products and Purchase on store-less platforms.
//   - ErrPurchaseCancelled when the user aborts a purchase.
//   - ActiveSubscription returns a zero Subscription, not an error, when the
//     user has none.
type SubscriptionBiller interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Purchase(ctx context.Context, productID string) (domain.PurchaseResult, error)
	ActiveSubscription(ctx context.Context) (domain.Subscription, error)
}

// MigrationStorage persists the resumable migration position.
//
// Error Contract:
//   - Load returns ErrNotFound when nothing was saved or after Clear.
type MigrationStorage interface {
	Save(ctx context.Context, state domain.MigrationState) error
	Load(ctx context.Context) (domain.MigrationState, error)
	Clear(ctx context.Context) error
}

// SharingLauncher hands content to the platform share sheet.
type SharingLauncher interface {
	Share(ctx context.Context, req domain.ShareRequest) error
}

// InstanceIDProvider reports a stable identifier for this installation.
type InstanceIDProvider interface {
	InstanceID(ctx context.Context) (string, error)
}

// RemoteHealthDataSource reads samples from the platform health store.
//
// Error Contract:
//   - ErrHealthUnavailable on platforms without a health store.
type RemoteHealthDataSource interface {
	Samples(ctx context.Context, q domain.HealthQuery) ([]domain.HealthSample, error)
}

// PreferencesStore is a string key-value store.
//
// Error Contract:
//   - Get returns ErrNotFound for unknown keys.
//   - Delete of an unknown key is not an error.
type PreferencesStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PreferenceChange is delivered to watchers after a Set or Delete.
type PreferenceChange struct {
	Key     string
	Value   string
	Deleted bool
}

// Observable streams changes to one key until ctx is cancelled, when the
// channel is closed.
type Observable interface {
	Watch(ctx context.Context, key string) (<-chan PreferenceChange, error)
}

type ObservablePreferences interface {
	PreferencesStore
	Observable
}

// LocationProvider reports the device position.
//
// Error Contract:
//   - ErrLocationUnavailable when no fix is known.
type LocationProvider interface {
	Current(ctx context.Context) (domain.Location, error)
}

// PresencePublisher announces this device's presence to the account's other devices.
type PresencePublisher interface {
	Publish(ctx context.Context, status domain.PresenceStatus) error
}

// ActivityPubClient lists the journal's federated audience.
//
// Error Contract:
//   - ErrNotImplemented from the placeholder variant.
type ActivityPubClient interface {
	Audience(ctx context.Context, handle string) ([]domain.AudienceMember, error)
}

// DeviceDirectory lists the devices signed in to the account.
type DeviceDirectory interface {
	Devices(ctx context.Context) ([]domain.Device, error)
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var (
	BillingKey     = container.NewKey[SubscriptionBiller]("billing.subscription")
	MigrationKey   = container.NewKey[MigrationStorage]("storage.migration")
	SharingKey     = container.NewKey[SharingLauncher]("ui.sharing")
	InstanceIDKey  = container.NewKey[InstanceIDProvider]("device.instance-id")
	HealthKey      = container.NewKey[RemoteHealthDataSource]("health.remote")
	PreferencesKey = container.NewKey[ObservablePreferences]("storage.preferences")
	HTTPClientKey  = container.NewKey[*http.Client]("net.http-client")
	LocationKey    = container.NewKey[LocationProvider]("device.location")
	PresenceKey    = container.NewKey[PresencePublisher]("social.presence")
	ActivityPubKey = container.NewKey[ActivityPubClient]("social.activitypub")
	DevicesKey     = container.NewKey[DeviceDirectory]("account.devices")
	ConfigKey      = container.NewKey[config.Config]("config")
	ClockKey       = container.NewKey[Clock]("system.clock")
)

// Well-known preference keys.
const (
	PrefEntryCount     = "journal.entry_count"
	PrefMigrationState = "sync.migration_state"
	PrefInstanceID     = "device.instance_id"
)
