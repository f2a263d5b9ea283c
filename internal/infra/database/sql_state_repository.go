// internal/infra/database/sql_state_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"
)

// ErrCorruptState is returned when the stored marker cannot be parsed.
var ErrCorruptState = notification.ErrCorruptState

// The date is kept as TEXT (YYYY-MM-DD) so the same statements run on PostgreSQL and SQLite.
const createStateTable = `CREATE TABLE IF NOT EXISTS notification_state (
	state_key          TEXT PRIMARY KEY,
	last_notified_date TEXT NOT NULL,
	updated_at         TEXT NOT NULL
)`

// SQLStateRepository stores the notification marker as one row keyed by a well-known key.
type SQLStateRepository struct {
	db  *sql.DB
	key string
	now func() time.Time
}

var _ notification.StateStore = (*SQLStateRepository)(nil)

func NewSQLStateRepository(db *sql.DB, key string) *SQLStateRepository {
	return &SQLStateRepository{db: db, key: key, now: time.Now}
}

// EnsureSchema creates the state table if it does not exist.
func (r *SQLStateRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("error creating notification_state table: %w", err)
	}
	return nil
}

func (r *SQLStateRepository) Read(ctx context.Context) (*notification.State, error) {
	query := `SELECT last_notified_date FROM notification_state WHERE state_key = $1`
	var raw string
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading notification state: %w", err)
	}

	date, err := draw.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", ErrCorruptState, r.key, err)
	}
	return &notification.State{LastNotifiedDate: date}, nil
}

// Write upserts the marker row; a single statement is atomic on both engines.
func (r *SQLStateRepository) Write(ctx context.Context, st notification.State) error {
	query := `INSERT INTO notification_state (state_key, last_notified_date, updated_at)
               VALUES ($1, $2, $3)
               ON CONFLICT (state_key) DO UPDATE
               SET last_notified_date = EXCLUDED.last_notified_date, updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		r.key,
		st.LastNotifiedDate.Format(draw.DateLayout),
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("error writing notification state: %w", err)
	}
	return nil
}
