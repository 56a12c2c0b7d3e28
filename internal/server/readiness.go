package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bayleafwalker/quire/internal/container"
)

const (
	ConditionContainerBuilt = "ContainerBuilt"
	ConditionRootResolved   = "RootResolved"
)

// Readiness tracks the startup conditions the readyz endpoint reports.
type Readiness struct {
	mu         sync.RWMutex
	conditions []metav1.Condition
}

func NewReadiness() *Readiness {
	r := &Readiness{}
	for _, t := range []string{ConditionContainerBuilt, ConditionRootResolved} {
		r.Set(t, false, "Pending", "")
	}
	return r
}

// Set records condition t. The transition time only moves when the status
// changes.
func (r *Readiness) Set(t string, ok bool, reason, message string) {
	status := metav1.ConditionFalse
	if ok {
		status = metav1.ConditionTrue
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	meta.SetStatusCondition(&r.conditions, metav1.Condition{
		Type:    t,
		Status:  status,
		Reason:  reason,
		Message: message,
	})
}

// Conditions returns a copy of the current conditions.
func (r *Readiness) Conditions() []metav1.Condition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]metav1.Condition, len(r.conditions))
	copy(out, r.conditions)
	return out
}

// Check is a healthz.Checker failing until every condition is true.
func (r *Readiness) Check(_ *http.Request) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, c := range r.conditions {
		if c.Status != metav1.ConditionTrue {
			errs = append(errs, fmt.Errorf("%s: %s %s", c.Type, c.Reason, c.Message))
		}
	}
	return errors.Join(errs...)
}

func readyMessage(constructed, total int) string {
	if total <= 0 {
		return "No capabilities required"
	}
	return fmt.Sprintf("%d/%d capabilities constructed", constructed, total)
}

// ObserveContainer records the state of a built container.
func (r *Readiness) ObserveContainer(c *container.Container) {
	if c == nil {
		r.Set(ConditionContainerBuilt, false, "BuildFailed", "")
		r.Set(ConditionRootResolved, false, "BuildFailed", "")
		return
	}
	r.Set(ConditionContainerBuilt, true, "Built", string(c.Platform()))

	plan := c.Plan()
	if err := plan.Err(); err != nil {
		r.Set(ConditionRootResolved, false, "Unresolved", err.Error())
		return
	}
	r.Set(ConditionRootResolved, true, "Resolved", readyMessage(len(c.Constructed()), len(plan.Order)))
}
