package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayleafwalker/quire/internal/capability"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS preferences")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := New(context.Background(), db)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, mock
}

func TestStore_GetMissingIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM preferences WHERE key = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, capability.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetUpserts(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)")).
		WithArgs("journal.entry_count", "3", int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "journal.entry_count", "3"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PropagatesDriverErrors(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM preferences WHERE key = ?")).
		WithArgs("k").
		WillReturnError(errors.New("database is locked"))

	err := s.Delete(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_OpenRealDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs", "quire.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "a", "2"))
	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, capability.ErrNotFound)
	require.NoError(t, s.Close())

	// Data survives reopening.
	s, err = Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "b", "kept"))
	require.NoError(t, s.Close())
	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "kept", v)
}
