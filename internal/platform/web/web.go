// Package web provisions the browser variants served by the web backend.
// Preferences live in Redis keyed by account; the instance id is not
// persisted because a browser session is not a device.
package web

import (
	"context"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/adapters/billing"
	"github.com/bayleafwalker/quire/internal/adapters/health"
	"github.com/bayleafwalker/quire/internal/adapters/instanceid"
	"github.com/bayleafwalker/quire/internal/adapters/location"
	"github.com/bayleafwalker/quire/internal/adapters/migration"
	"github.com/bayleafwalker/quire/internal/adapters/prefs"
	"github.com/bayleafwalker/quire/internal/adapters/prefs/redisstore"
	"github.com/bayleafwalker/quire/internal/adapters/presence"
	"github.com/bayleafwalker/quire/internal/adapters/sharing"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/modules"
)

const Platform = quirev1alpha1.PlatformWeb

func Module(cfg config.Config) *container.Module {
	m := container.NewModule("web").ForPlatform(Platform)
	modules.ProvideHTTPClient(m, Platform)
	modules.ProvideBridge(m)

	container.Provide(m, capability.PreferencesKey, func(ctx context.Context, _ container.Deps) (capability.ObservablePreferences, error) {
		store, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.AccountID)
		if err != nil {
			return nil, err
		}
		return prefs.NewNotifying(store), nil
	}, container.Variant("redis"))

	container.Value[capability.SubscriptionBiller](m, capability.BillingKey, billing.Stub{}, container.Variant("stub"))

	container.Provide(m, capability.MigrationKey, func(ctx context.Context, d container.Deps) (capability.MigrationStorage, error) {
		store, err := container.Resolve(ctx, d, capability.PreferencesKey)
		if err != nil {
			return nil, err
		}
		return migration.NewPrefsBacked(store), nil
	}, container.Variant("localstorage"), container.Needs(capability.PreferencesKey))

	container.Value[capability.InstanceIDProvider](m, capability.InstanceIDKey, instanceid.NewEphemeral(), container.Variant("ephemeral"))

	container.Provide(m, capability.SharingKey, func(ctx context.Context, d container.Deps) (capability.SharingLauncher, error) {
		b, err := container.Resolve(ctx, d, modules.BridgeKey)
		if err != nil {
			return nil, err
		}
		return sharing.NewURLLauncher(cfg.WebShareBaseURL, sharing.BridgeOpener(b))
	}, container.Variant("web-share"), container.Needs(modules.BridgeKey))

	container.Value[capability.RemoteHealthDataSource](m, capability.HealthKey, health.Unavailable{}, container.Variant("unavailable"))

	container.Provide(m, capability.LocationKey, func(ctx context.Context, d container.Deps) (capability.LocationProvider, error) {
		clock, err := container.Resolve(ctx, d, capability.ClockKey)
		if err != nil {
			return nil, err
		}
		return location.NewStatic(cfg.StaticLatitude, cfg.StaticLongitude, clock), nil
	}, container.Variant("static"), container.Needs(capability.ClockKey))

	container.Provide(m, capability.PresenceKey, func(ctx context.Context, _ container.Deps) (capability.PresencePublisher, error) {
		return presence.Connect(ctx, cfg.NATSURL, cfg.PresenceSubject, "quire-web")
	}, container.Variant("nats"))

	return m
}
