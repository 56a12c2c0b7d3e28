// Package filestore provides a preferences store kept in one JSON file.
package filestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/bayleafwalker/quire/internal/adapters/fsutil"
	"github.com/bayleafwalker/quire/internal/capability"
)

// Store keeps every preference in memory and rewrites the file on change.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

var _ capability.PreferencesStore = (*Store)(nil)

// Open loads path. A missing file starts an empty store.
func Open(path string) (*Store, error) {
	values := make(map[string]string)
	if _, err := fsutil.ReadJSON(path, &values); err != nil {
		return nil, fmt.Errorf("read preferences %s: %w", path, err)
	}
	return &Store{path: path, values: values}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", capability.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.values[key]
	s.values[key] = value
	if err := fsutil.WriteJSON(s.path, s.values, 0o600); err != nil {
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.values[key]
	if !existed {
		return nil
	}
	delete(s.values, key)
	if err := fsutil.WriteJSON(s.path, s.values, 0o600); err != nil {
		s.values[key] = prev
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
