// Package desktop provisions the desktop variants. Everything is local to
// the machine except presence, which is published over NATS.
package desktop

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

const Platform = quirev1alpha1.PlatformDesktop

func Module(cfg config.Config) *container.Module {
	m := container.NewModule("desktop").ForPlatform(Platform)
	modules.ProvideHTTPClient(m, Platform)

	container.Provide(m, capability.PreferencesKey, func(ctx context.Context, _ container.Deps) (capability.ObservablePreferences, error) {
		store, err := sqlite.Open(ctx, cfg.Path("prefs.db"))
		if err != nil {
			return nil, err
		}
		return prefs.NewNotifying(store), nil
	}, container.Variant("sqlite"))

	container.Value[capability.SubscriptionBiller](m, capability.BillingKey, billing.Stub{}, container.Variant("stub"))

	container.Value[capability.MigrationStorage](m, capability.MigrationKey, migration.NewFile(cfg.Path("migration.json")), container.Variant("file"))

	container.Provide(m, capability.InstanceIDKey, func(ctx context.Context, d container.Deps) (capability.InstanceIDProvider, error) {
		store, err := container.Resolve(ctx, d, capability.PreferencesKey)
		if err != nil {
			return nil, err
		}
		return instanceid.NewPersisted(store), nil
	}, container.Variant("persisted"), container.Needs(capability.PreferencesKey))

	container.Provide(m, capability.SharingKey, func(context.Context, container.Deps) (capability.SharingLauncher, error) {
		return sharing.NewURLLauncher(cfg.WebShareBaseURL, sharing.BrowserOpener)
	}, container.Variant("browser"))

	container.Value[capability.RemoteHealthDataSource](m, capability.HealthKey, health.Unavailable{}, container.Variant("unavailable"))

	container.Provide(m, capability.LocationKey, func(ctx context.Context, d container.Deps) (capability.LocationProvider, error) {
		clock, err := container.Resolve(ctx, d, capability.ClockKey)
		if err != nil {
			return nil, err
		}
		return location.NewStatic(cfg.StaticLatitude, cfg.StaticLongitude, clock), nil
	}, container.Variant("static"), container.Needs(capability.ClockKey))

	container.Provide(m, capability.PresenceKey, func(ctx context.Context, _ container.Deps) (capability.PresencePublisher, error) {
		return presence.Connect(ctx, cfg.NATSURL, cfg.PresenceSubject, "quire-"+cfg.DeviceName)
	}, container.Variant("nats"))

	return m
}
