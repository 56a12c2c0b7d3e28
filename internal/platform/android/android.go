// Package android provisions the Android variants. The native shell exposes
// Play Billing, share intents, Health Connect and location through the
// loopback bridge.
package android

import (
	"context"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/adapters/billing"
	"github.com/bayleafwalker/quire/internal/adapters/health"
	"github.com/bayleafwalker/quire/internal/adapters/instanceid"
	"github.com/bayleafwalker/quire/internal/adapters/location"
	"github.com/bayleafwalker/quire/internal/adapters/migration"
	"github.com/bayleafwalker/quire/internal/adapters/prefs"
	"github.com/bayleafwalker/quire/internal/adapters/prefs/sqlite"
	"github.com/bayleafwalker/quire/internal/adapters/presence"
	"github.com/bayleafwalker/quire/internal/adapters/sharing"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/modules"
)

const Platform = quirev1alpha1.PlatformAndroid

func Module(cfg config.Config) *container.Module {
	m := container.NewModule("android").ForPlatform(Platform)
	modules.ProvideHTTPClient(m, Platform)
	modules.ProvideBridge(m)

	container.Provide(m, capability.PreferencesKey, func(ctx context.Context, _ container.Deps) (capability.ObservablePreferences, error) {
		store, err := sqlite.Open(ctx, cfg.Path("prefs.db"))
		if err != nil {
			return nil, err
		}
		return prefs.NewNotifying(store), nil
	}, container.Variant("sqlite"))

	container.Provide(m, capability.BillingKey, func(ctx context.Context, d container.Deps) (capability.SubscriptionBiller, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return billing.NewPlayStore(b), nil
	}, container.Variant("playstore"), container.Needs(modules.BridgeKey))

	container.Provide(m, capability.MigrationKey, func(ctx context.Context, d container.Deps) (capability.MigrationStorage, error) {
		store, err := container.Resolve(ctx, d, capability.PreferencesKey)
		if err != nil {
			return nil, err
		}
		return migration.NewPrefsBacked(store), nil
	}, container.Variant("datastore"), container.Needs(capability.PreferencesKey))

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
	}, container.Variant("intent"), container.Needs(modules.BridgeKey))

	container.Provide(m, capability.HealthKey, func(ctx context.Context, d container.Deps) (capability.RemoteHealthDataSource, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return health.NewRemote(b), nil
	}, container.Variant("health-connect"), container.Needs(modules.BridgeKey))

	container.Provide(m, capability.LocationKey, func(ctx context.Context, d container.Deps) (capability.LocationProvider, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return location.NewBridge(b), nil
	}, container.Variant("fused"), container.Needs(modules.BridgeKey))

	container.Value[capability.PresencePublisher](m, capability.PresenceKey, presence.Noop{}, container.Variant("noop"))

	return m
}
