package modules

import (
	"context"
	"net/http"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/adapters/httpclient"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/container"
)

// BridgeKey is the client for the native shell's loopback bridge. Only
// platform modules that talk to a shell provide it.
var BridgeKey = container.NewKey[*bridge.Client]("net.bridge")

// ProvideHTTPClient registers the HTTP client tuned for p in m.
func ProvideHTTPClient(m *container.Module, p quirev1alpha1.Platform) *container.Module {
	return container.Provide(m, capability.HTTPClientKey, func(ctx context.Context, d container.Deps) (*http.Client, error) {
		cfg, err := container.Resolve(ctx, d, capability.ConfigKey)
		if err != nil {
			return nil, err
		}
		return httpclient.New(cfg, p)
	}, container.Variant(string(p)), container.Needs(capability.ConfigKey))
}

// ProvideBridge registers the shell bridge client in m.
func ProvideBridge(m *container.Module) *container.Module {
	return container.Provide(m, BridgeKey, func(ctx context.Context, d container.Deps) (*bridge.Client, error) {
		client, err := container.Resolve(ctx, d, capability.HTTPClientKey)
		if err != nil {
			return nil, err
		}
		cfg, err := container.Resolve(ctx, d, capability.ConfigKey)
		if err != nil {
			return nil, err
		}
		return bridge.New(client, cfg.BridgeURL)
	}, container.Needs(capability.HTTPClientKey, capability.ConfigKey))
}
