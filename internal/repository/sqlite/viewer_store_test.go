package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcircle/internal/domain"
)

func TestViewerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "viewer.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	store := NewViewerStore(db, time.Hour)

	_, err = store.Get(ctx, "scope-1", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)

	jane := domain.NewUser(2, "Jane Doe", "jane@example.com")
	require.NoError(t, store.Set(ctx, "scope-1", domain.CurrentUserKey, &jane))

	bob := domain.NewUser(3, "Bob Smith", "bob@example.com")
	require.NoError(t, store.Set(ctx, "scope-1", domain.CurrentUserKey, &bob), "overwrite")
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	store = NewViewerStore(db, time.Hour)

	got, err := store.Get(ctx, "scope-1", domain.CurrentUserKey)
	require.NoError(t, err)
	assert.Equal(t, bob, *got)

	_, err = store.Get(ctx, "scope-2", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func openTestStore(t *testing.T, ttl time.Duration) (*sql.DB, *viewerStore) {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "viewer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, NewViewerStore(db, ttl).(*viewerStore)
}

func TestViewerStore_ExpiredScopesAreEvicted(t *testing.T) {
	ctx := context.Background()
	db, store := openTestStore(t, time.Hour)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	jane := domain.NewUser(2, "Jane Doe", "jane@example.com")
	require.NoError(t, store.Set(ctx, "old", domain.CurrentUserKey, &jane))
	clock = clock.Add(30 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", domain.CurrentUserKey, &jane))

	clock = clock.Add(45 * time.Minute)
	_, err := store.Get(ctx, "old", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(ctx, "fresh", domain.CurrentUserKey)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "new", domain.CurrentUserKey, &jane))
	var rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM viewer_kv`).Scan(&rows))
	assert.Equal(t, 2, rows, "expired rows are pruned on write")
}

func TestViewerStore_FailuresAreTransient(t *testing.T) {
	ctx := context.Background()
	db, store := openTestStore(t, time.Hour)
	require.NoError(t, db.Close())

	_, err := store.Get(ctx, "scope", domain.CurrentUserKey)
	assert.ErrorIs(t, err, domain.ErrTransient)

	jane := domain.NewUser(2, "Jane Doe", "jane@example.com")
	err = store.Set(ctx, "scope", domain.CurrentUserKey, &jane)
	assert.ErrorIs(t, err, domain.ErrTransient)
}
