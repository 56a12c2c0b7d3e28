package usecase

import (
	"context"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/container"
)

// Register adds every use case to m as a factory-scoped capability.
func Register(m *container.Module) *container.Module {
	container.Provide(m, ObserveQuotaKey, func(ctx context.Context, d container.Deps) (*ObserveQuota, error) {
		biller, err := container.Resolve(ctx, d, capability.BillingKey)
		if err != nil {
			return nil, err
		}
		prefs, err := container.Resolve(ctx, d, capability.PreferencesKey)
		if err != nil {
			return nil, err
		}
		clock, err := container.Resolve(ctx, d, capability.ClockKey)
		if err != nil {
			return nil, err
		}
		return NewObserveQuota(biller, prefs, clock), nil
	}, container.AsFactory(), container.Needs(capability.BillingKey, capability.PreferencesKey, capability.ClockKey))

	container.Provide(m, ListDevicesKey, func(ctx context.Context, d container.Deps) (*ListDevices, error) {
		directory, err := container.Resolve(ctx, d, capability.DevicesKey)
		if err != nil {
			return nil, err
		}
		ids, err := container.Resolve(ctx, d, capability.InstanceIDKey)
		if err != nil {
			return nil, err
		}
		return NewListDevices(directory, ids), nil
	}, container.AsFactory(), container.Needs(capability.DevicesKey, capability.InstanceIDKey))

	container.Provide(m, PurchaseSubscriptionKey, func(ctx context.Context, d container.Deps) (*PurchaseSubscription, error) {
		biller, err := container.Resolve(ctx, d, capability.BillingKey)
		if err != nil {
			return nil, err
		}
		return NewPurchaseSubscription(biller), nil
	}, container.AsFactory(), container.NeedsVersion(capability.BillingKey, "^1.0.0"))

	container.Provide(m, ShareEntryKey, func(ctx context.Context, d container.Deps) (*ShareEntry, error) {
		launcher, err := container.Resolve(ctx, d, capability.SharingKey)
		if err != nil {
			return nil, err
		}
		return NewShareEntry(launcher), nil
	}, container.AsFactory(), container.Needs(capability.SharingKey))

	container.Provide(m, SaveMigrationStateKey, func(ctx context.Context, d container.Deps) (*SaveMigrationState, error) {
		storage, err := container.Resolve(ctx, d, capability.MigrationKey)
		if err != nil {
			return nil, err
		}
		ids, err := container.Resolve(ctx, d, capability.InstanceIDKey)
		if err != nil {
			return nil, err
		}
		clock, err := container.Resolve(ctx, d, capability.ClockKey)
		if err != nil {
			return nil, err
		}
		return NewSaveMigrationState(storage, ids, clock), nil
	}, container.AsFactory(), container.Needs(capability.MigrationKey, capability.InstanceIDKey, capability.ClockKey))

	container.Provide(m, LoadMigrationStateKey, func(ctx context.Context, d container.Deps) (*LoadMigrationState, error) {
		storage, err := container.Resolve(ctx, d, capability.MigrationKey)
		if err != nil {
			return nil, err
		}
		return NewLoadMigrationState(storage), nil
	}, container.AsFactory(), container.Needs(capability.MigrationKey))

	container.Provide(m, SyncHealthKey, func(ctx context.Context, d container.Deps) (*SyncHealth, error) {
		source, err := container.Resolve(ctx, d, capability.HealthKey)
		if err != nil {
			return nil, err
		}
		return NewSyncHealth(source), nil
	}, container.AsFactory(), container.Needs(capability.HealthKey))

	container.Provide(m, UpdatePresenceKey, func(ctx context.Context, d container.Deps) (*UpdatePresence, error) {
		publisher, err := container.Resolve(ctx, d, capability.PresenceKey)
		if err != nil {
			return nil, err
		}
		ids, err := container.Resolve(ctx, d, capability.InstanceIDKey)
		if err != nil {
			return nil, err
		}
		clock, err := container.Resolve(ctx, d, capability.ClockKey)
		if err != nil {
			return nil, err
		}
		return NewUpdatePresence(publisher, ids, clock), nil
	}, container.AsFactory(), container.Needs(capability.PresenceKey, capability.InstanceIDKey, capability.ClockKey))

	container.Provide(m, ListAudienceKey, func(ctx context.Context, d container.Deps) (*ListAudience, error) {
		client, err := container.Resolve(ctx, d, capability.ActivityPubKey)
		if err != nil {
			return nil, err
		}
		return NewListAudience(client), nil
	}, container.AsFactory(), container.Needs(capability.ActivityPubKey))

	container.Provide(m, LocateEntryKey, func(ctx context.Context, d container.Deps) (*LocateEntry, error) {
		location, err := container.Resolve(ctx, d, capability.LocationKey)
		if err != nil {
			return nil, err
		}
		return NewLocateEntry(location), nil
	}, container.AsFactory(), container.Needs(capability.LocationKey))

	return m
}
