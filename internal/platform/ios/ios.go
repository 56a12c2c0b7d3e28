// Package ios provisions the iOS variants. Migration state is sealed with a
// passphrase held by the keychain; StoreKit is not bridged yet, so billing
// is the stub.
package ios

import (
	"context"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/adapters/billing"
	"github.com/bayleafwalker/quire/internal/adapters/health"
	"github.com/bayleafwalker/quire/internal/adapters/instanceid"
	"github.com/bayleafwalker/quire/internal/adapters/location"
	"github.com/bayleafwalker/quire/internal/adapters/migration"
	"github.com/bayleafwalker/quire/internal/adapters/prefs"
	"github.com/bayleafwalker/quire/internal/adapters/prefs/filestore"
	"github.com/bayleafwalker/quire/internal/adapters/presence"
	"github.com/bayleafwalker/quire/internal/adapters/sharing"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/modules"
)

const Platform = quirev1alpha1.PlatformIOS

func Module(cfg config.Config) *container.Module {
	m := container.NewModule("ios").ForPlatform(Platform)
	modules.ProvideHTTPClient(m, Platform)
	modules.ProvideBridge(m)

	container.Provide(m, capability.PreferencesKey, func(context.Context, container.Deps) (capability.ObservablePreferences, error) {
		store, err := filestore.Open(cfg.Path("prefs.json"))
		if err != nil {
			return nil, err
		}
		return prefs.NewNotifying(store), nil
	}, container.Variant("userdefaults"))

	container.Value[capability.SubscriptionBiller](m, capability.BillingKey, billing.Stub{}, container.Variant("stub"))

	container.Provide(m, capability.MigrationKey, func(context.Context, container.Deps) (capability.MigrationStorage, error) {
		return migration.NewKeychain(cfg.Path("migration.sealed"), cfg.KeychainPassphrase, migration.DefaultScryptParams())
	}, container.Variant("keychain"))

	container.Provide(m, capability.InstanceIDKey, func(ctx context.Context, d container.Deps) (capability.InstanceIDProvider, error) {
		store, err := container.Resolve(ctx, d, capability.PreferencesKey)
		if err != nil {
			return nil, err
		}
		return instanceid.NewPersisted(store), nil
	}, container.Variant("persisted"), container.Needs(capability.PreferencesKey))

	container.Provide(m, capability.SharingKey, func(ctx context.Context, d container.Deps) (capability.SharingLauncher, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return sharing.NewIntent(b), nil
	}, container.Variant("activity-sheet"), container.Needs(modules.BridgeKey))

	container.Provide(m, capability.HealthKey, func(ctx context.Context, d container.Deps) (capability.RemoteHealthDataSource, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return health.NewRemote(b), nil
	}, container.Variant("healthkit"), container.Needs(modules.BridgeKey))

	container.Provide(m, capability.LocationKey, func(ctx context.Context, d container.Deps) (capability.LocationProvider, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return location.NewBridge(b), nil
	}, container.Variant("corelocation"), container.Needs(modules.BridgeKey))

	container.Value[capability.PresencePublisher](m, capability.PresenceKey, presence.Noop{}, container.Variant("noop"))

	return m
}
