package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository persists toasts to the notifications table.
// Details are stored as msgpack blobs.
type Repository struct {
	db      *sql.DB
	emitter EventEmitter
	log     zerolog.Logger
}

// NewRepository creates a notifications repository. emitter may be nil.
func NewRepository(db *sql.DB, emitter EventEmitter, log zerolog.Logger) *Repository {
	return &Repository{
		db:      db,
		emitter: emitter,
		log:     log.With().Str("repository", "notifications").Logger(),
	}
}

// Insert stores a toast
func (r *Repository) Insert(ctx context.Context, toast Toast) error {
	var details []byte
	if len(toast.Details) > 0 {
		encoded, err := msgpack.Marshal(toast.Details)
		if err != nil {
			return fmt.Errorf("failed to encode toast details: %w", err)
		}
		details = encoded
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (id, kind, text, details, created_at) VALUES (?, ?, ?, ?, ?)",
		toast.ID, string(toast.Kind), toast.Text, details, toast.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// List returns up to limit toasts, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]Toast, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, kind, text, details, created_at FROM notifications ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	toasts := make([]Toast, 0)
	for rows.Next() {
		var (
			toast     Toast
			kind      string
			details   []byte
			createdAt int64
		)
		if err := rows.Scan(&toast.ID, &kind, &toast.Text, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		toast.Kind = Kind(kind)
		toast.CreatedAt = time.UnixMilli(createdAt).UTC()

		if len(details) > 0 {
			if err := msgpack.Unmarshal(details, &toast.Details); err != nil {
				r.log.Warn().Err(err).Str("id", toast.ID).Msg("Failed to decode toast details")
				toast.Details = nil
				if r.emitter != nil {
					r.emitter.EmitError("notifications", fmt.Errorf("failed to decode toast details: %w", err),
						map[string]interface{}{"toast_id": toast.ID})
				}
			}
		}
		toasts = append(toasts, toast)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return toasts, nil
}

// Count returns the number of stored toasts
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes toasts created before cutoff and returns how many were removed
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notifications WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
