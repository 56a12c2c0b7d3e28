// Package migration provides the MigrationStorage variants: a preferences
// backed store, a plain JSON file and a passphrase-sealed keychain file.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bayleafwalker/quire/internal/capability"
	"github.com/bayleafwalker/quire/internal/domain"
)

// PrefsBacked keeps the state as one JSON value in the preferences store.
type PrefsBacked struct {
	prefs capability.PreferencesStore
	key   string
}

var _ capability.MigrationStorage = (*PrefsBacked)(nil)

func NewPrefsBacked(prefs capability.PreferencesStore) *PrefsBacked {
	return &PrefsBacked{prefs: prefs, key: capability.PrefMigrationState}
}

func (s *PrefsBacked) Save(ctx context.Context, state domain.MigrationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode migration state: %w", err)
	}
	return s.prefs.Set(ctx, s.key, string(b))
}

func (s *PrefsBacked) Load(ctx context.Context) (domain.MigrationState, error) {
	raw, err := s.prefs.Get(ctx, s.key)
	if err != nil {
		return domain.MigrationState{}, err
	}
	var state domain.MigrationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.MigrationState{}, fmt.Errorf("decode migration state: %w", err)
	}
	return state, nil
}

func (s *PrefsBacked) Clear(ctx context.Context) error {
	err := s.prefs.Delete(ctx, s.key)
	if errors.Is(err, capability.ErrNotFound) {
		return nil
	}
	return err
}
