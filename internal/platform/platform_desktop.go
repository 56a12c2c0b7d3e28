//go:build !quire_android && !quire_ios && !quire_web

package platform

import (
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/platform/desktop"
)

const Current = desktop.Platform

func variant(cfg config.Config) *container.Module { return desktop.Module(cfg) }
