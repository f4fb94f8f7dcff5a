package memory

import (
	"context"
	"sync"

	"eventcircle/internal/domain"
)

// eventRepository keeps events as an immutable snapshot. Writers build a new
// slice and swap it in under the lock, so a reader holding the previous
// snapshot never observes a half-applied transition.
type eventRepository struct {
	mu     sync.RWMutex
	events []*domain.Event
	nextID int64
}

// NewEventRepository returns an in-memory EventRepository preloaded with seed.
// Ids are handed out from a counter that starts above the highest seeded id and
// never goes back, so deleted ids are not reused.
func NewEventRepository(seed ...*domain.Event) domain.EventRepository {
	r := &eventRepository{events: make([]*domain.Event, 0, len(seed))}
	for _, e := range seed {
		r.events = append(r.events, e.Clone())
		if e.ID > r.nextID {
			r.nextID = e.ID
		}
	}
	return r
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return domain.MarkTransient(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	next := make([]*domain.Event, len(r.events), len(r.events)+1)
	copy(next, r.events)
	r.events = append(next, event.Clone())
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.mu.RLock()
	snapshot := r.events
	r.mu.RUnlock()

	for _, e := range snapshot {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	r.mu.RLock()
	snapshot := r.events
	r.mu.RUnlock()

	out := make([]*domain.Event, 0, len(snapshot))
	for _, e := range snapshot {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (r *eventRepository) Update(ctx context.Context, id int64, fn domain.Transition) (*domain.Event, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, domain.MarkTransient(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, e := range r.events {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, domain.ErrNotFound
	}

	draft := r.events[idx].Clone()
	changed, err := fn(draft)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return r.events[idx].Clone(), false, nil
	}

	next := make([]*domain.Event, len(r.events))
	copy(next, r.events)
	next[idx] = draft
	r.events = next
	return draft.Clone(), true, nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return domain.MarkTransient(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]*domain.Event, 0, len(r.events))
	found := false
	for _, e := range r.events {
		if e.ID == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		return domain.ErrNotFound
	}
	r.events = next
	return nil
}
