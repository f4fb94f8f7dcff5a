package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"eventcircle/internal/domain"
)

// timeLayout matches SQLite's CURRENT_TIMESTAMP so stored values compare as text.
const timeLayout = "2006-01-02 15:04:05"

type viewerStore struct {
	DB  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and prepares the key-value table.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS viewer_kv (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, key)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create viewer_kv table: %w", err)
	}
	return db, nil
}

// NewViewerStore returns a ViewerStore persisting JSON-encoded users in db.
// Rows not written for ttl are ignored and pruned on write. A zero ttl keeps them forever.
func NewViewerStore(db *sql.DB, ttl time.Duration) domain.ViewerStore {
	return &viewerStore{DB: db, ttl: ttl, now: time.Now}
}

// cutoff returns the oldest updated_at still considered live.
func (s *viewerStore) cutoff() string {
	if s.ttl <= 0 {
		return ""
	}
	return s.now().UTC().Add(-s.ttl).Format(timeLayout)
}

func (s *viewerStore) Get(ctx context.Context, scope, key string) (*domain.User, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM viewer_kv WHERE scope = ? AND key = ? AND updated_at > ?`,
		scope, key, s.cutoff(),
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.MarkTransient(fmt.Errorf("get viewer: %w", err))
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode viewer: %w", err)
	}
	return &u, nil
}

func (s *viewerStore) Set(ctx context.Context, scope, key string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode viewer: %w", err)
	}
	if s.ttl > 0 {
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM viewer_kv WHERE updated_at <= ?`, s.cutoff()); err != nil {
			return domain.MarkTransient(fmt.Errorf("prune viewers: %w", err))
		}
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO viewer_kv (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, scope, key, string(raw), s.now().UTC().Format(timeLayout))
	if err != nil {
		return domain.MarkTransient(fmt.Errorf("set viewer: %w", err))
	}
	return nil
}
