package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// ListDevices lists the account's devices with this installation first.
type ListDevices struct {
	directory  capability.DeviceDirectory
	instanceID capability.InstanceIDProvider
}

func NewListDevices(directory capability.DeviceDirectory, instanceID capability.InstanceIDProvider) *ListDevices {
	return &ListDevices{directory: directory, instanceID: instanceID}
}

func (u *ListDevices) Execute(ctx context.Context) ([]domain.Device, error) {
	self, err := u.instanceID.InstanceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("instance id: %w", err)
	}
	devices, err := u.directory.Devices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Device, len(devices))
	for i, d := range devices {
		d.Current = d.ID == self
		out[i] = d
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Current != out[j].Current {
			return out[i].Current
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type PurchaseSubscription struct {
	biller capability.SubscriptionBiller
}

func NewPurchaseSubscription(biller capability.SubscriptionBiller) *PurchaseSubscription {
	return &PurchaseSubscription{biller: biller}
}

func (u *PurchaseSubscription) Execute(ctx context.Context, productID string) (domain.PurchaseResult, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.PurchaseResult{}, ErrEmptyProductID
	}
	return u.biller.Purchase(ctx, productID)
}

type ShareEntry struct {
	launcher capability.SharingLauncher
}

func NewShareEntry(launcher capability.SharingLauncher) *ShareEntry {
	return &ShareEntry{launcher: launcher}
}

func (u *ShareEntry) Execute(ctx context.Context, req domain.ShareRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return u.launcher.Share(ctx, req)
}

// SaveMigrationState records the migration position for this installation.
type SaveMigrationState struct {
	storage    capability.MigrationStorage
	instanceID capability.InstanceIDProvider
	clock      capability.Clock
}

func NewSaveMigrationState(storage capability.MigrationStorage, instanceID capability.InstanceIDProvider, clock capability.Clock) *SaveMigrationState {
	return &SaveMigrationState{storage: storage, instanceID: instanceID, clock: clock}
}

func (u *SaveMigrationState) Execute(ctx context.Context, cursor string, payload []byte) (domain.MigrationState, error) {
	id, err := u.instanceID.InstanceID(ctx)
	if err != nil {
		return domain.MigrationState{}, fmt.Errorf("instance id: %w", err)
	}
	state := domain.MigrationState{
		SchemaVersion: domain.MigrationSchemaVersion,
		InstanceID:    id,
		Cursor:        cursor,
		Payload:       payload,
		UpdatedAt:     u.clock.Now().UTC(),
	}
	if err := u.storage.Save(ctx, state); err != nil {
		return domain.MigrationState{}, err
	}
	return state, nil
}

type LoadMigrationState struct {
	storage capability.MigrationStorage
}

func NewLoadMigrationState(storage capability.MigrationStorage) *LoadMigrationState {
	return &LoadMigrationState{storage: storage}
}

// Execute returns capability.ErrNotFound when no migration was started.
func (u *LoadMigrationState) Execute(ctx context.Context) (domain.MigrationState, error) {
	state, err := u.storage.Load(ctx)
	if err != nil {
		return domain.MigrationState{}, err
	}
	if state.SchemaVersion > domain.MigrationSchemaVersion {
		return domain.MigrationState{}, fmt.Errorf("migration state schema %d is newer than supported %d",
			state.SchemaVersion, domain.MigrationSchemaVersion)
	}
	return state, nil
}

type SyncHealth struct {
	source capability.RemoteHealthDataSource
}

func NewSyncHealth(source capability.RemoteHealthDataSource) *SyncHealth {
	return &SyncHealth{source: source}
}

func (u *SyncHealth) Execute(ctx context.Context, q domain.HealthQuery) ([]domain.HealthSample, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return u.source.Samples(ctx, q)
}

// UpdatePresence announces this device's presence state.
type UpdatePresence struct {
	publisher  capability.PresencePublisher
	instanceID capability.InstanceIDProvider
	clock      capability.Clock
}

func NewUpdatePresence(publisher capability.PresencePublisher, instanceID capability.InstanceIDProvider, clock capability.Clock) *UpdatePresence {
	return &UpdatePresence{publisher: publisher, instanceID: instanceID, clock: clock}
}

func (u *UpdatePresence) Execute(ctx context.Context, state domain.PresenceState) (domain.PresenceStatus, error) {
	id, err := u.instanceID.InstanceID(ctx)
	if err != nil {
		return domain.PresenceStatus{}, fmt.Errorf("instance id: %w", err)
	}
	status := domain.PresenceStatus{State: state, DeviceID: id, UpdatedAt: u.clock.Now().UTC()}
	if err := status.Validate(); err != nil {
		return domain.PresenceStatus{}, err
	}
	if err := u.publisher.Publish(ctx, status); err != nil {
		return domain.PresenceStatus{}, err
	}
	return status, nil
}

type ListAudience struct {
	client capability.ActivityPubClient
}

func NewListAudience(client capability.ActivityPubClient) *ListAudience {
	return &ListAudience{client: client}
}

func (u *ListAudience) Execute(ctx context.Context, handle string) ([]domain.AudienceMember, error) {
	return u.client.Audience(ctx, handle)
}

type LocateEntry struct {
	location capability.LocationProvider
}

func NewLocateEntry(location capability.LocationProvider) *LocateEntry {
	return &LocateEntry{location: location}
}

func (u *LocateEntry) Execute(ctx context.Context) (domain.Location, error) {
	return u.location.Current(ctx)
}
