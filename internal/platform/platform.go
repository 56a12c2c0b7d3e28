// Package platform aggregates the shared modules with the variant module of
// the build target. The target is chosen at compile time with the
// quire_android, quire_ios and quire_web build tags; without a tag the
// desktop variants are linked.
package platform

import (
	"context"

	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/modules"
)

// Root returns the module tree for the compiled platform.
func Root(cfg config.Config) *container.Module {
	return modules.Root().Include(
		modules.Data(cfg),
		modules.Domain(),
		variant(cfg),
	)
}

// Build validates and builds the container for the compiled platform.
func Build(ctx context.Context, cfg config.Config, opts ...container.Option) (*container.Container, error) {
	return container.Build(ctx, Current, []*container.Module{Root(cfg)}, opts...)
}
