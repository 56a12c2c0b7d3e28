package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/bayleafwalker/quire/internal/adapters/fsutil"
	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// File keeps the state in a JSON file, replaced atomically on every save.
type File struct {
	mu   sync.Mutex
	path string
}

var _ capability.MigrationStorage = (*File)(nil)

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(_ context.Context, state domain.MigrationState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := fsutil.WriteJSON(f.path, state, 0o600); err != nil {
		return fmt.Errorf("write migration state: %w", err)
	}
	return nil
}

func (f *File) Load(_ context.Context) (domain.MigrationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var state domain.MigrationState
	found, err := fsutil.ReadJSON(f.path, &state)
	if err != nil {
		return domain.MigrationState{}, fmt.Errorf("read migration state: %w", err)
	}
	if !found {
		return domain.MigrationState{}, capability.ErrNotFound
	}
	return state, nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fsutil.Remove(f.path)
}
