// Package prefs holds the preference-store decorators shared by every
// platform variant. The concrete stores live in the subpackages.
package prefs

import (
	"context"
	"io"
	"sync"

	"github.com/bayleafwalker/quire/internal/capability"
)

// watchBuffer is how many undelivered changes a slow watcher may hold before
// the oldest is dropped in favour of the newest.
const watchBuffer = 16

// Notifying makes any PreferencesStore observable: every successful Set or
// Delete is broadcast to the watchers of that key.
type Notifying struct {
	store capability.PreferencesStore

	mu       sync.Mutex
	watchers map[string]map[chan capability.PreferenceChange]struct{}
}

var _ capability.ObservablePreferences = (*Notifying)(nil)

func NewNotifying(store capability.PreferencesStore) *Notifying {
	return &Notifying{
		store:    store,
		watchers: make(map[string]map[chan capability.PreferenceChange]struct{}),
	}
}

func (n *Notifying) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, key)
}

func (n *Notifying) Set(ctx context.Context, key, value string) error {
	if err := n.store.Set(ctx, key, value); err != nil {
		return err
	}
	n.broadcast(capability.PreferenceChange{Key: key, Value: value})
	return nil
}

func (n *Notifying) Delete(ctx context.Context, key string) error {
	if err := n.store.Delete(ctx, key); err != nil {
		return err
	}
	n.broadcast(capability.PreferenceChange{Key: key, Deleted: true})
	return nil
}

// Watch delivers changes to key made after the call, in order. The channel
// is closed once ctx is done.
func (n *Notifying) Watch(ctx context.Context, key string) (<-chan capability.PreferenceChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan capability.PreferenceChange, watchBuffer)

	n.mu.Lock()
	set, ok := n.watchers[key]
	if !ok {
		set = make(map[chan capability.PreferenceChange]struct{})
		n.watchers[key] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.watchers[key], ch)
		if len(n.watchers[key]) == 0 {
			delete(n.watchers, key)
		}
		close(ch)
	}()
	return ch, nil
}

func (n *Notifying) broadcast(change capability.PreferenceChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.watchers[change.Key] {
		select {
		case ch <- change:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- change:
			default:
			}
		}
	}
}

// Close closes the underlying store if it holds resources.
func (n *Notifying) Close() error {
	if c, ok := n.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Memory is an in-process PreferencesStore.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", capability.ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
