//go:build quire_ios

package platform

import (
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/platform/ios"
)

const Current = ios.Platform

func variant(cfg config.Config) *container.Module { return ios.Module(cfg) }
