package health

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/quire/internal/adapters/bridge"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

var (
	from = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to   = from.Add(24 * time.Hour)
)

func newRemote(t *testing.T, h http.HandlerFunc) *Remote {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	b, err := bridge.New(srv.Client(), srv.URL)
	require.NoError(t, err)
	return NewRemote(b)
}

func TestRemote_ParsesSamples(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "steps", req.URL.Query().Get("metric"))
		assert.Equal(t, "2026-04-01T00:00:00Z", req.URL.Query().Get("from"))
		_, _ = io.WriteString(w, `{"data":[
			{"value":4200,"unit":"count","start":"2026-04-01T08:00:00Z","end":"2026-04-01T09:00:00Z"},
			{"metric":"steps","value":800.5,"unit":"count","start":"2026-04-01T10:00:00Z","end":"2026-04-01T11:00:00Z"}
		]}`)
	})

	samples, err := r.Samples(context.Background(), domain.HealthQuery{Metric: "steps", From: from, To: to})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "steps", samples[0].Metric)
	assert.Equal(t, 4200.0, samples[0].Value)
	assert.Equal(t, 800.5, samples[1].Value)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), samples[1].Start)
}

func TestRemote_Unavailable(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":"unavailable","message":"permission denied"}}`)
	})

	_, err := r.Samples(context.Background(), domain.HealthQuery{Metric: "steps", From: from, To: to})
	assert.ErrorIs(t, err, capability.ErrHealthUnavailable)
}

func TestRemote_BadTimestampIsAnError(t *testing.T) {
	r := newRemote(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"value":1,"start":"yesterday","end":"today"}]}`)
	})

	_, err := r.Samples(context.Background(), domain.HealthQuery{Metric: "steps", From: from, To: to})
	require.Error(t, err)
}

func TestRemote_ValidatesQuery(t *testing.T) {
	r := newRemote(t, func(http.ResponseWriter, *http.Request) {
		t.Error("bridge must not be called")
	})
	_, err := r.Samples(context.Background(), domain.HealthQuery{Metric: "steps", From: to, To: from})
	assert.ErrorIs(t, err, domain.ErrInvalidHealthRange)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Samples(context.Background(), domain.HealthQuery{})
	assert.ErrorIs(t, err, capability.ErrHealthUnavailable)
}
