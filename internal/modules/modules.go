// Package modules holds the provisioning modules every platform shares: the
// data layer that does not vary by target, the use case layer and the root
// requirements of application code.
package modules

import (
	"context"
	"time"

	"github.com/bayleafwalker/quire/internal/adapters/activitypub"
	"github.com/bayleafwalker/quire/internal/adapters/devices"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/usecase"
)

const (
	DataModule   = "data"
	DomainModule = "domain"
	RootModule   = "root"
)

// Data provides the platform-independent capabilities.
func Data(cfg config.Config) *container.Module {
	m := container.NewModule(DataModule)

	container.Value(m, capability.ConfigKey, cfg)
	container.Value[capability.Clock](m, capability.ClockKey, capability.ClockFunc(time.Now))

	container.Provide(m, capability.DevicesKey, func(ctx context.Context, d container.Deps) (capability.DeviceDirectory, error) {
		client, err := container.Resolve(ctx, d, capability.HTTPClientKey)
		if err != nil {
			return nil, err
		}
		c, err := container.Resolve(ctx, d, capability.ConfigKey)
		if err != nil {
			return nil, err
		}
		return devices.NewHTTP(client, c.APIBaseURL, c.AccountID), nil
	}, container.Variant("http"), container.Needs(capability.HTTPClientKey, capability.ConfigKey))

	container.Value[capability.ActivityPubClient](m, capability.ActivityPubKey, activitypub.Placeholder{},
		container.Variant("placeholder"), container.Version("0.1.0"))

	return m
}

// Domain provides every use case.
func Domain() *container.Module {
	return usecase.Register(container.NewModule(DomainModule))
}

// Root requires every use case application code resolves.
func Root() *container.Module {
	m := container.NewModule(RootModule)
	for _, key := range usecase.Keys() {
		m.Require(key, "")
	}
	return m
}
