package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcircle/internal/domain"
)

func newEvent(hostID int64) *domain.Event {
	return domain.NewEvent(domain.EventFields{
		Title: "Meetup", Description: "d", Date: "2024-01-01", Time: "10:00", Location: "Hall",
	}, hostID, time.Now())
}

func TestEventRepository_CreateAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(DemoEvents(time.Now())...)

	first := newEvent(1)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(6), first.ID)

	require.NoError(t, repo.Delete(ctx, first.ID))

	second := newEvent(1)
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, int64(7), second.ID, "deleted ids are not reused")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(7), list[5].ID, "insertion order")
}

func TestEventRepository_UpdateIsCopyOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := newEvent(1)
	require.NoError(t, repo.Create(ctx, ev))

	before, err := repo.List(ctx)
	require.NoError(t, err)

	bob := domain.NewUser(3, "Bob Smith", "bob@example.com")
	updated, changed, err := repo.Update(ctx, ev.ID, func(e *domain.Event) (bool, error) {
		return e.AddRequest(bob)
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, updated.Requests, 1)

	assert.Empty(t, before[0].Requests, "earlier reads are unaffected")

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, got.Requests, 1)

	got.Requests = nil
	again, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, again.Requests, 1, "callers cannot mutate stored records")
}

func TestEventRepository_UpdateFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := newEvent(1)
	require.NoError(t, repo.Create(ctx, ev))

	boom := errors.New("boom")
	_, _, err := repo.Update(ctx, ev.ID, func(e *domain.Event) (bool, error) {
		e.Title = "changed"
		return false, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", got.Title)
}

func TestEventRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()

	_, err := repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = repo.Update(ctx, 42, func(e *domain.Event) (bool, error) { return true, nil })
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, 42), domain.ErrNotFound)
}

func TestEventRepository_CancelledContextIsTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewEventRepository()
	err := repo.Create(ctx, newEvent(1))
	require.ErrorIs(t, err, domain.ErrTransient)
}

func TestEventRepository_ConcurrentRequestsNeverDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := newEvent(1)
	require.NoError(t, repo.Create(ctx, ev))

	users := DemoUsers()[1:]
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, u := range users {
			wg.Add(1)
			go func(u domain.User) {
				defer wg.Done()
				_, _, err := repo.Update(ctx, ev.ID, func(e *domain.Event) (bool, error) {
					return e.AddRequest(u)
				})
				assert.NoError(t, err)
			}(u)
		}
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, got.Requests, len(users))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := DemoUsers()
	repo := NewUserRepository([]domain.User{users[2], users[0], users[1]})

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)

	u, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", u.Name)

	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewerStore(t *testing.T) {
	ctx := context.Background()
	store := NewViewerStore(time.Hour)

	_, err := store.Get(ctx, "scope-a", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)

	jane := DemoUsers()[1]
	require.NoError(t, store.Set(ctx, "scope-a", domain.CurrentUserKey, &jane))

	got, err := store.Get(ctx, "scope-a", domain.CurrentUserKey)
	require.NoError(t, err)
	assert.Equal(t, jane, *got)

	_, err = store.Get(ctx, "scope-b", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewerStore_ExpiredScopesAreEvicted(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewViewerStore(time.Hour).(*viewerStore)
	store.now = func() time.Time { return clock }

	jane := DemoUsers()[1]
	for _, scope := range []string{"scope-a", "scope-b", "scope-c"} {
		require.NoError(t, store.Set(ctx, scope, domain.CurrentUserKey, &jane))
	}

	clock = clock.Add(30 * time.Minute)
	require.NoError(t, store.Set(ctx, "scope-a", domain.CurrentUserKey, &jane), "refresh")

	clock = clock.Add(45 * time.Minute)
	_, err := store.Get(ctx, "scope-b", domain.CurrentUserKey)
	require.ErrorIs(t, err, domain.ErrNotFound)
	got, err := store.Get(ctx, "scope-a", domain.CurrentUserKey)
	require.NoError(t, err)
	assert.Equal(t, jane, *got)

	bob := DemoUsers()[2]
	require.NoError(t, store.Set(ctx, "scope-d", domain.CurrentUserKey, &bob))
	assert.Len(t, store.values, 2, "expired scopes are swept on write")
}

func TestViewerStore_ZeroTTLKeepsEntries(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	store := NewViewerStore(0).(*viewerStore)
	store.now = func() time.Time { return clock }

	jane := DemoUsers()[1]
	require.NoError(t, store.Set(ctx, "scope", domain.CurrentUserKey, &jane))
	clock = clock.Add(365 * 24 * time.Hour)
	_, err := store.Get(ctx, "scope", domain.CurrentUserKey)
	require.NoError(t, err)
}
