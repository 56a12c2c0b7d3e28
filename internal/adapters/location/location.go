// Package location provides the LocationProvider variants.
package location

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// Bridge asks the shell for the last known fix.
type Bridge struct {
	bridge *bridge.Client
}

var _ capability.LocationProvider = (*Bridge)(nil)

func NewBridge(b *bridge.Client) *Bridge {
	return &Bridge{bridge: b}
}

func (l *Bridge) Current(ctx context.Context) (domain.Location, error) {
	data, err := l.bridge.Call(ctx, http.MethodGet, "/location", nil, nil)
	if err != nil {
		switch bridge.CodeOf(err) {
		case bridge.CodeUnavailable, bridge.CodeNotFound, bridge.CodeUnsupported:
			return domain.Location{}, fmt.Errorf("%w: %v", capability.ErrLocationUnavailable, err)
		}
		return domain.Location{}, err
	}
	if !data.Get("latitude").Exists() || !data.Get("longitude").Exists() {
		return domain.Location{}, capability.ErrLocationUnavailable
	}
	loc := domain.Location{
		Latitude:  data.Get("latitude").Float(),
		Longitude: data.Get("longitude").Float(),
		Accuracy:  data.Get("accuracy").Float(),
	}
	if ts := data.Get("timestamp").String(); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return domain.Location{}, fmt.Errorf("location timestamp: %w", err)
		}
		loc.Timestamp = t
	}
	return loc, nil
}

// Static reports a configured position, for targets without a GPS.
type Static struct {
	lat, lon float64
	clock    capability.Clock
}

var _ capability.LocationProvider = (*Static)(nil)

func NewStatic(lat, lon float64, clock capability.Clock) *Static {
	return &Static{lat: lat, lon: lon, clock: clock}
}

func (s *Static) Current(context.Context) (domain.Location, error) {
	return domain.Location{Latitude: s.lat, Longitude: s.lon, Timestamp: s.clock.Now()}, nil
}
