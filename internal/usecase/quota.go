package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// ObserveQuota streams the entry quota: the active subscription's tier limit
// against the stored entry count.
type ObserveQuota struct {
	biller capability.SubscriptionBiller
	prefs  capability.ObservablePreferences
	clock  capability.Clock
}

func NewObserveQuota(biller capability.SubscriptionBiller, prefs capability.ObservablePreferences, clock capability.Clock) *ObserveQuota {
	return &ObserveQuota{biller: biller, prefs: prefs, clock: clock}
}

// Observe emits the current quota, then again after every change to the
// entry count. Failures are delivered as Result.Err and the stream keeps
// going. The channel is closed when ctx is done.
func (u *ObserveQuota) Observe(ctx context.Context) <-chan Result[domain.Quota] {
	out := make(chan Result[domain.Quota], 1)

	go func() {
		defer close(out)
		logger := logr.FromContextOrDiscard(ctx).WithValues("usecase", "ObserveQuota")

		send := func(r Result[domain.Quota]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		// 1) Subscribe before the first read so no change is missed.
		changes, err := u.prefs.Watch(ctx, capability.PrefEntryCount)
		if err != nil {
			send(Result[domain.Quota]{Err: fmt.Errorf("watch entry count: %w", err)})
			return
		}

		// 2) Emit the starting quota.
		if !send(u.current(ctx)) {
			return
		}

		// 3) Re-emit on every change.
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				r := u.current(ctx)
				if r.Err != nil {
					logger.Error(r.Err, "quota refresh failed")
				}
				if !send(r) {
					return
				}
			}
		}
	}()

	return out
}

func (u *ObserveQuota) current(ctx context.Context) Result[domain.Quota] {
	sub, err := u.biller.ActiveSubscription(ctx)
	if err != nil {
		return Result[domain.Quota]{Err: fmt.Errorf("active subscription: %w", err)}
	}
	tier := domain.TierFree
	if sub.Active(u.clock.Now()) && sub.Tier != "" {
		tier = sub.Tier
	}

	used := 0
	raw, err := u.prefs.Get(ctx, capability.PrefEntryCount)
	switch {
	case errors.Is(err, capability.ErrNotFound):
	case err != nil:
		return Result[domain.Quota]{Err: fmt.Errorf("entry count: %w", err)}
	default:
		used, err = strconv.Atoi(raw)
		if err != nil {
			return Result[domain.Quota]{Err: fmt.Errorf("entry count %q: %w", raw, err)}
		}
	}
	return Result[domain.Quota]{Value: domain.NewQuota(used, tier)}
}
