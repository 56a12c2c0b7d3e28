package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bayleafwalker/quire/internal/adapters/prefs"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

func next(t *testing.T, ch <-chan Result[domain.Quota]) Result[domain.Quota] {
	t.Helper()
	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatalf("stream closed unexpectedly")
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for quota")
	}
	return Result[domain.Quota]{}
}

func TestObserveQuota_EmitsOnStartAndOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := prefs.NewNotifying(prefs.NewMemory())
	if err := store.Set(ctx, capability.PrefEntryCount, "10"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	biller := &fakeBiller{sub: domain.Subscription{ProductID: "plus.monthly", Tier: domain.TierPlus, ExpiresAt: testNow.Add(time.Hour)}}

	stream := NewObserveQuota(biller, store, fixedClock).Observe(ctx)

	first := next(t, stream)
	if first.Err != nil {
		t.Fatalf("unexpected error: %v", first.Err)
	}
	if first.Value != (domain.Quota{Used: 10, Limit: 1000, Tier: domain.TierPlus}) {
		t.Fatalf("unexpected initial quota %+v", first.Value)
	}

	if err := store.Set(ctx, capability.PrefEntryCount, "11"); err != nil {
		t.Fatalf("set: %v", err)
	}
	second := next(t, stream)
	if second.Value.Used != 11 {
		t.Fatalf("expected updated count 11, got %+v", second.Value)
	}
}

func TestObserveQuota_ExpiredSubscriptionFallsBackToFree(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	biller := &fakeBiller{sub: domain.Subscription{ProductID: "pro", Tier: domain.TierPro, ExpiresAt: testNow.Add(-time.Minute)}}
	stream := NewObserveQuota(biller, prefs.NewNotifying(prefs.NewMemory()), fixedClock).Observe(ctx)

	r := next(t, stream)
	if r.Err != nil || r.Value.Tier != domain.TierFree || r.Value.Used != 0 {
		t.Fatalf("expected empty free quota, got %+v err=%v", r.Value, r.Err)
	}
}

func TestObserveQuota_DeliversProviderErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("store unreachable")
	store := prefs.NewNotifying(prefs.NewMemory())
	biller := &fakeBiller{subErr: boom}
	stream := NewObserveQuota(biller, store, fixedClock).Observe(ctx)

	r := next(t, stream)
	if !errors.Is(r.Err, boom) {
		t.Fatalf("expected provider error, got %v", r.Err)
	}

	// The stream survives the failure.
	biller.subErr = nil
	if err := store.Set(ctx, capability.PrefEntryCount, "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	r = next(t, stream)
	if r.Err != nil || r.Value.Used != 2 {
		t.Fatalf("expected recovery, got %+v err=%v", r.Value, r.Err)
	}
}

func TestObserveQuota_CorruptCountIsAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := prefs.NewNotifying(prefs.NewMemory())
	_ = store.Set(ctx, capability.PrefEntryCount, "many")
	r := next(t, NewObserveQuota(&fakeBiller{}, store, fixedClock).Observe(ctx))
	if r.Err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestObserveQuota_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := NewObserveQuota(&fakeBiller{}, prefs.NewNotifying(prefs.NewMemory()), fixedClock).Observe(ctx)
	next(t, stream)
	cancel()

	select {
	case _, ok := <-stream:
		if ok {
			// A value raced the cancellation; the close must follow.
			if _, ok := <-stream; ok {
				t.Fatalf("expected stream to close")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream not closed after cancel")
	}
}
