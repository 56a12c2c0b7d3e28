// Package instanceid provides the InstanceIDProvider variants.
package instanceid

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/bayleafwalker/quire/internal/capability"
)

// Persisted generates a random ID on first use and keeps it in preferences,
// so it survives restarts but not reinstalls.
type Persisted struct {
	prefs capability.PreferencesStore
	newID func() string

	mu     sync.Mutex
	cached string
}

var _ capability.InstanceIDProvider = (*Persisted)(nil)

func NewPersisted(prefs capability.PreferencesStore) *Persisted {
	return &Persisted{prefs: prefs, newID: uuid.NewString}
}

func (p *Persisted) InstanceID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" {
		return p.cached, nil
	}

	id, err := p.prefs.Get(ctx, capability.PrefInstanceID)
	switch {
	case err == nil && id != "":
		p.cached = id
		return id, nil
	case err != nil && !errors.Is(err, capability.ErrNotFound):
		return "", fmt.Errorf("read instance id: %w", err)
	}

	id = p.newID()
	if err := p.prefs.Set(ctx, capability.PrefInstanceID, id); err != nil {
		return "", fmt.Errorf("store instance id: %w", err)
	}
	logr.FromContextOrDiscard(ctx).Info("generated instance id", "instanceId", id)
	p.cached = id
	return id, nil
}

// Ephemeral is a per-process ID for platforms without durable local storage.
type Ephemeral struct {
	id string
}

var _ capability.InstanceIDProvider = Ephemeral{}

func NewEphemeral() Ephemeral {
	return Ephemeral{id: uuid.NewString()}
}

func (e Ephemeral) InstanceID(context.Context) (string, error) {
	return e.id, nil
}
