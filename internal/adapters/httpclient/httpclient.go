// Package httpclient builds the platform-tuned *http.Client shared by every
// network-facing capability.
package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/config"
)

// Profile holds the transport settings of one platform.
type Profile struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
}

// ProfileFor returns the transport settings for p. Mobile targets keep few
// idle connections and drop them quickly to spare the radio.
func ProfileFor(p quirev1alpha1.Platform) Profile {
	switch p {
	case quirev1alpha1.PlatformAndroid, quirev1alpha1.PlatformIOS:
		return Profile{MaxIdleConns: 8, MaxIdleConnsPerHost: 2, IdleConnTimeout: 30 * time.Second, TLSHandshakeTimeout: 15 * time.Second}
	case quirev1alpha1.PlatformWeb:
		return Profile{MaxIdleConns: 64, MaxIdleConnsPerHost: 16, IdleConnTimeout: 90 * time.Second, TLSHandshakeTimeout: 10 * time.Second}
	default:
		return Profile{MaxIdleConns: 32, MaxIdleConnsPerHost: 8, IdleConnTimeout: 90 * time.Second, TLSHandshakeTimeout: 10 * time.Second}
	}
}

// New returns a client with tracing and a client-side rate limit.
func New(cfg config.Config, p quirev1alpha1.Platform) (*http.Client, error) {
	if cfg.HTTPRateLimit <= 0 || cfg.HTTPBurst <= 0 {
		return nil, fmt.Errorf("http rate limit %v/%d must be positive", cfg.HTTPRateLimit, cfg.HTTPBurst)
	}
	profile := ProfileFor(p)

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConns = profile.MaxIdleConns
	base.MaxIdleConnsPerHost = profile.MaxIdleConnsPerHost
	base.IdleConnTimeout = profile.IdleConnTimeout
	base.TLSHandshakeTimeout = profile.TLSHandshakeTimeout

	limited := &RateLimited{
		Next:    base,
		Limiter: rate.NewLimiter(rate.Limit(cfg.HTTPRateLimit), cfg.HTTPBurst),
	}

	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(limited),
	}, nil
}

// RateLimited waits for a limiter token before each request. Waiting honours
// the request context.
type RateLimited struct {
	Next    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *RateLimited) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("http rate limit: %w", err)
	}
	return t.Next.RoundTrip(req)
}
