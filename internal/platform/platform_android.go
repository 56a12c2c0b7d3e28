//go:build quire_android

package platform

import (
	"github.com/bayleafwalker/quire/internal/config"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/platform/android"
)

const Current = android.Platform

func variant(cfg config.Config) *container.Module { return android.Module(cfg) }
