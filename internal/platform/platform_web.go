//go:build quire_web

package platform

import (
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/platform/web"
)

const Current = web.Platform

func variant(cfg config.Config) *container.Module { return web.Module(cfg) }
