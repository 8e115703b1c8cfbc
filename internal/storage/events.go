package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/city-hub/internal/logging"
)

// AppendEvent records a user event.
func (s *SQLiteStorage) AppendEvent(ctx context.Context, event UserEvent) error {
	return s.AppendEvents(ctx, []UserEvent{event})
}

// AppendEvents records a batch of user events in one transaction. Missing ids
// and timestamps are filled in.
func (s *SQLiteStorage) AppendEvents(ctx context.Context, events []UserEvent) error {
	if !s.Enabled() || len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_events (id, user_id, event_type, category, entity_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		meta, err := encodeMap(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.UserID,
			e.EventType,
			e.Category,
			e.EntityID,
			meta,
			formatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// QueryEvents returns a user's events since q.Since, newest first.
func (s *SQLiteStorage) QueryEvents(ctx context.Context, q EventQuery) ([]UserEvent, error) {
	if !s.Enabled() {
		return []UserEvent{}, nil
	}

	query := `
		SELECT id, user_id, event_type, category, entity_id, metadata, created_at
		FROM user_events
		WHERE user_id = ? AND created_at >= ?`
	args := []any{q.UserID, formatTime(q.Since)}

	if len(q.Types) > 0 {
		query += " AND event_type IN (" + placeholders(len(q.Types)) + ")"
		args = appendStrings(args, q.Types)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []UserEvent{}
	for rows.Next() {
		var e UserEvent
		var meta, created string

		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.Category, &e.EntityID, &meta, &created); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if e.CreatedAt, err = parseTime(created); err != nil {
			logging.Warn().Err(err).Str("event_id", e.ID).Msg("skipping event with bad timestamp")
			continue
		}
		if e.Metadata, err = decodeMap(meta); err != nil {
			logging.Warn().Err(err).Str("event_id", e.ID).Msg("dropping unreadable event metadata")
			e.Metadata = nil
		}

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}

// Stats returns row counts.
func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if !s.Enabled() {
		return st, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&st.Items, "SELECT COUNT(*) FROM items", nil},
		{&st.ActiveItems, "SELECT COUNT(*) FROM items WHERE status = ? AND (expires_at IS NULL OR expires_at > ?)",
			[]any{StatusActive, formatTime(time.Now())}},
		{&st.Events, "SELECT COUNT(*) FROM user_events", nil},
		{&st.Users, "SELECT COUNT(DISTINCT user_id) FROM user_events", nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil && err != sql.ErrNoRows {
			return st, fmt.Errorf("failed to count: %w", err)
		}
	}

	return st, nil
}

// Cleanup removes events older than the retention period and returns the
// number of rows deleted.
func (s *SQLiteStorage) Cleanup(retention time.Duration) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-retention))

	res, err := s.db.Exec("DELETE FROM user_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup user_events: %w", err)
	}
	deleted, _ := res.RowsAffected()

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		logging.Warn().Err(err).Msg("failed to vacuum database")
	}

	return deleted, nil
}
