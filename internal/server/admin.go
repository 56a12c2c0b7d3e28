// Package server exposes the process over HTTP (probes, metrics and the
// capability plan) and gRPC (health).
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
	"github.com/bayleafwalker/quire/internal/container"
	"github.com/bayleafwalker/quire/internal/resolver"
)

// CapabilityReport is the body of /debug/capabilities.
type CapabilityReport struct {
	Platform    quirev1alpha1.Platform       `json:"platform"`
	Plan        resolver.Plan                `json:"plan"`
	Constructed []quirev1alpha1.CapabilityID `json:"constructed"`
	Conditions  []conditionView              `json:"conditions"`
}

type conditionView struct {
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason,omitempty"`
	Message            string    `json:"message,omitempty"`
	LastTransitionTime time.Time `json:"lastTransitionTime"`
}

// NewAdminRouter serves /healthz, /readyz, /metrics and /debug/capabilities.
func NewAdminRouter(c *container.Container, ready *Readiness) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	live := http.StripPrefix("/healthz", &healthz.Handler{Checks: map[string]healthz.Checker{"ping": healthz.Ping}})
	r.Handle("/healthz", live)
	r.Handle("/healthz/*", live)

	readyz := http.StripPrefix("/readyz", &healthz.Handler{Checks: map[string]healthz.Checker{
		"ping":         healthz.Ping,
		"capabilities": ready.Check,
	}})
	r.Handle("/readyz", readyz)
	r.Handle("/readyz/*", readyz)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Get("/debug/capabilities", func(w http.ResponseWriter, _ *http.Request) {
		report := CapabilityReport{
			Platform:    c.Platform(),
			Plan:        c.Plan(),
			Constructed: c.Constructed(),
		}
		for _, cond := range ready.Conditions() {
			report.Conditions = append(report.Conditions, conditionView{
				Type:               cond.Type,
				Status:             string(cond.Status),
				Reason:             cond.Reason,
				Message:            cond.Message,
				LastTransitionTime: cond.LastTransitionTime.Time,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	})

	return r
}
