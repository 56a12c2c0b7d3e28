package usecase

import (
	"context"
	"time"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

var testNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

var fixedClock = capability.ClockFunc(func() time.Time { return testNow })

type fakeBiller struct {
	sub       domain.Subscription
	subErr    error
	purchases []string
	purchase  func(productID string) (domain.PurchaseResult, error)
}

func (f *fakeBiller) Products(context.Context) ([]domain.Product, error) { return nil, nil }

func (f *fakeBiller) Purchase(_ context.Context, productID string) (domain.PurchaseResult, error) {
	f.purchases = append(f.purchases, productID)
	if f.purchase != nil {
		return f.purchase(productID)
	}
	return domain.PurchaseResult{ProductID: productID, Status: domain.PurchaseCompleted}, nil
}

func (f *fakeBiller) ActiveSubscription(context.Context) (domain.Subscription, error) {
	return f.sub, f.subErr
}

type staticID string

func (s staticID) InstanceID(context.Context) (string, error) { return string(s), nil }

type fakeDirectory struct {
	devices []domain.Device
	err     error
}

func (f fakeDirectory) Devices(context.Context) ([]domain.Device, error) { return f.devices, f.err }

type recordingLauncher struct {
	shared []domain.ShareRequest
}

func (r *recordingLauncher) Share(_ context.Context, req domain.ShareRequest) error {
	r.shared = append(r.shared, req)
	return nil
}

type memoryMigration struct {
	state *domain.MigrationState
}

func (m *memoryMigration) Save(_ context.Context, s domain.MigrationState) error {
	m.state = &s
	return nil
}

func (m *memoryMigration) Load(context.Context) (domain.MigrationState, error) {
	if m.state == nil {
		return domain.MigrationState{}, capability.ErrNotFound
	}
	return *m.state, nil
}

func (m *memoryMigration) Clear(context.Context) error {
	m.state = nil
	return nil
}

type recordingPublisher struct {
	published []domain.PresenceStatus
}

func (r *recordingPublisher) Publish(_ context.Context, s domain.PresenceStatus) error {
	r.published = append(r.published, s)
	return nil
}
