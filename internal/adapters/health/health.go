// Package health provides the RemoteHealthDataSource variants.
package health

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// Remote reads samples from the platform health store (Health Connect,
// HealthKit) through the shell bridge.
type Remote struct {
	bridge *bridge.Client
}

var _ capability.RemoteHealthDataSource = (*Remote)(nil)

func NewRemote(b *bridge.Client) *Remote {
	return &Remote{bridge: b}
}

func (r *Remote) Samples(ctx context.Context, q domain.HealthQuery) ([]domain.HealthSample, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("metric", q.Metric)
	query.Set("from", q.From.UTC().Format(time.RFC3339))
	query.Set("to", q.To.UTC().Format(time.RFC3339))

	data, err := r.bridge.Call(ctx, http.MethodGet, "/health/samples", query, nil)
	if err != nil {
		switch bridge.CodeOf(err) {
		case bridge.CodeUnavailable, bridge.CodeUnsupported:
			return nil, fmt.Errorf("%w: %v", capability.ErrHealthUnavailable, err)
		}
		return nil, err
	}

	samples := make([]domain.HealthSample, 0)
	var parseErr error
	data.ForEach(func(_, item gjson.Result) bool {
		start, err := time.Parse(time.RFC3339, item.Get("start").String())
		if err != nil {
			parseErr = fmt.Errorf("sample start: %w", err)
			return false
		}
		end, err := time.Parse(time.RFC3339, item.Get("end").String())
		if err != nil {
			parseErr = fmt.Errorf("sample end: %w", err)
			return false
		}
		metric := item.Get("metric").String()
		if metric == "" {
			metric = q.Metric
		}
		samples = append(samples, domain.HealthSample{
			Metric: metric,
			Value:  item.Get("value").Float(),
			Unit:   item.Get("unit").String(),
			Start:  start,
			End:    end,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return samples, nil
}

// Unavailable is registered where no health store exists.
type Unavailable struct{}

var _ capability.RemoteHealthDataSource = Unavailable{}

func (Unavailable) Samples(context.Context, domain.HealthQuery) ([]domain.HealthSample, error) {
	return nil, capability.ErrHealthUnavailable
}
