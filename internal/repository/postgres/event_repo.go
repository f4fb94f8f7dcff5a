package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventcircle/internal/domain"
)

const (
	memberInvited   = "invited"
	memberRequested = "requested"
)

const selectEvents = `
	SELECT id, title, description, event_date, start_time, location, category, image_url, host_id, created_at
	FROM events
`

const selectMembers = `
	SELECT m.event_id, m.status, m.unread, u.id, u.name, u.email
	FROM event_members m
	JOIN users u ON u.id = m.user_id
	WHERE m.event_id = ANY($1)
	ORDER BY m.seq
`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, event_date, start_time, location, category, image_url, host_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, string(e.Category), e.ImageURL, e.HostID, e.CreatedAt,
	).Scan(&e.ID)
	return translate(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return getEvent(ctx, r.DB, id, false)
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, selectEvents+` ORDER BY id`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	if err := loadMembers(ctx, r.DB, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Update locks the event row, applies fn to a copy and rewrites the membership
// rows in the same transaction. Nothing is written when fn reports no change.
func (r *eventRepository) Update(ctx context.Context, id int64, fn domain.Transition) (*domain.Event, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, translate(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := getEvent(ctx, tx, id, true)
	if err != nil {
		return nil, false, err
	}
	draft := current.Clone()
	changed, err := fn(draft)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return current, false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_members WHERE event_id = $1`, id); err != nil {
		return nil, false, translate(err)
	}
	insert := `INSERT INTO event_members (event_id, user_id, status, unread) VALUES ($1, $2, $3, $4)`
	for _, u := range draft.Invitees {
		if _, err := tx.ExecContext(ctx, insert, id, u.ID, memberInvited, domain.HasUnreadInvite(draft, u.ID)); err != nil {
			return nil, false, translate(err)
		}
	}
	for _, u := range draft.Requests {
		if _, err := tx.ExecContext(ctx, insert, id, u.ID, memberRequested, false); err != nil {
			return nil, false, translate(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, false, translate(err)
	}
	committed = true
	return draft, true, nil
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func getEvent(ctx context.Context, q queryer, id int64, forUpdate bool) (*domain.Event, error) {
	query := selectEvents + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	e, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translate(err)
	}
	if err := loadMembers(ctx, q, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{
		Invitees:      []domain.User{},
		Requests:      []domain.User{},
		UnreadInvites: []domain.User{},
	}
	var category string
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&category, &e.ImageURL, &e.HostID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Category = domain.Category(category)
	return e, nil
}

// loadMembers fills the membership lists of events with one query.
func loadMembers(ctx context.Context, q queryer, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Event, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := q.QueryContext(ctx, selectMembers, pq.Array(ids))
	if err != nil {
		return translate(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			eventID int64
			status  string
			unread  bool
			u       domain.User
		)
		if err := rows.Scan(&eventID, &status, &unread, &u.ID, &u.Name, &u.Email); err != nil {
			return err
		}
		e, ok := byID[eventID]
		if !ok {
			continue
		}
		switch status {
		case memberInvited:
			e.Invitees = append(e.Invitees, u)
			if unread {
				e.UnreadInvites = append(e.UnreadInvites, u)
			}
		case memberRequested:
			e.Requests = append(e.Requests, u)
		default:
			return fmt.Errorf("event %d: unknown member status %q", eventID, status)
		}
	}
	return translate(rows.Err())
}
