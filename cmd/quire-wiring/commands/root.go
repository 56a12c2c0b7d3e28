// Package commands implements quire-wiring, which validates and prints the
// capability graph of every platform without constructing any provider.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/modules"
	"github.com/bayleafwalker/quire/internal/platform/android"
	"github.com/bayleafwalker/quire/internal/platform/desktop"
	"github.com/bayleafwalker/quire/internal/platform/ios"
	"github.com/bayleafwalker/quire/internal/platform/web"
)

var variants = map[quirev1alpha1.Platform]func(config.Config) *container.Module{
	quirev1alpha1.PlatformAndroid: android.Module,
	quirev1alpha1.PlatformIOS:     ios.Module,
	quirev1alpha1.PlatformDesktop: desktop.Module,
	quirev1alpha1.PlatformWeb:     web.Module,
}

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "quire-wiring",
		Short:         "Inspect quire capability wiring per platform",
		SilenceUsage: true,
	}
	root.AddCommand(checkCmd(), graphCmd())
	return root
}

// buildFor builds the full module tree for p. Providers stay unconstructed,
// so the configuration only needs to parse.
func buildFor(ctx context.Context, p quirev1alpha1.Platform) (*container.Container, error) {
	variant, ok := variants[p]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", p)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	root := modules.Root().Include(modules.Data(cfg), modules.Domain(), variant(cfg))
	return container.Build(ctx, p, []*container.Module{root})
}

func parsePlatforms(raw string) ([]quirev1alpha1.Platform, error) {
	if raw == "" || raw == "all" {
		return quirev1alpha1.Platforms(), nil
	}
	p, ok := quirev1alpha1.ParsePlatform(raw)
	if !ok || p == quirev1alpha1.PlatformShared {
		return nil, fmt.Errorf("unknown platform %q", raw)
	}
	return []quirev1alpha1.Platform{p}, nil
}
