package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"eventcircle/internal/domain"
)

// Migration is one named schema step. Steps run once, in order.
type Migration struct {
	Name string
	Up   string
}

var migrations = []Migration{
	{
		Name: "initial_schema",
		Up: `
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE
			);

			CREATE TABLE IF NOT EXISTS events (
				id BIGSERIAL PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				event_date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				location TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				image_url TEXT NOT NULL DEFAULT '',
				host_id BIGINT NOT NULL REFERENCES users (id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			-- one row per (event, user): a user is either invited or requesting, never both
			CREATE TABLE IF NOT EXISTS event_members (
				seq BIGSERIAL,
				event_id BIGINT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
				user_id BIGINT NOT NULL REFERENCES users (id),
				status TEXT NOT NULL CHECK (status IN ('invited', 'requested')),
				unread BOOLEAN NOT NULL DEFAULT FALSE,
				PRIMARY KEY (event_id, user_id)
			);

			CREATE INDEX IF NOT EXISTS idx_event_members_user ON event_members (user_id);
			CREATE INDEX IF NOT EXISTS idx_events_host ON events (host_id);
		`,
	},
}

// Migrate applies every migration not yet recorded in _migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			run_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM _migrations WHERE name = $1)`, m.Name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Name, err)
		}
		if applied {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %s: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations (name) VALUES ($1)`, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// SeedUsers inserts users that are not present yet. Existing rows are left untouched.
func SeedUsers(ctx context.Context, db *sql.DB, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(users))
	names := make([]string, 0, len(users))
	emails := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		names = append(names, u.Name)
		emails = append(emails, u.Email)
	}
	query := `
		INSERT INTO users (id, name, email)
		SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[])
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := db.ExecContext(ctx, query, pq.Array(ids), pq.Array(names), pq.Array(emails)); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}
