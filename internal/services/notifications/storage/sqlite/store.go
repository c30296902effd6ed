// Package sqlite provides SQLite-backed persistence for notification
// read-state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/duebook/duebook/internal/platform/storage/sqlitemigrate"
	"github.com/duebook/duebook/internal/services/notifications/storage"
	"github.com/duebook/duebook/internal/services/notifications/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for notification read marks.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a notification read-state store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRead upserts one read mark. Re-reading an already-read notification
// keeps the earliest mark.
func (s *Store) PutRead(ctx context.Context, notificationID string, readAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return fmt.Errorf("notification id is required")
	}
	if readAt.IsZero() {
		return fmt.Errorf("read timestamp is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notification_reads (notification_id, read_at)
VALUES (?, ?)
ON CONFLICT(notification_id) DO NOTHING
`, notificationID, toMillis(readAt))
	if err != nil {
		return fmt.Errorf("put read mark: %w", err)
	}
	return nil
}

// GetRead loads one read mark by notification id.
func (s *Store) GetRead(ctx context.Context, notificationID string) (storage.ReadRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ReadRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ReadRecord{}, fmt.Errorf("storage is not configured")
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return storage.ReadRecord{}, fmt.Errorf("notification id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT notification_id, read_at
FROM notification_reads
WHERE notification_id = ?
`, notificationID)
	var record storage.ReadRecord
	var readAt int64
	if err := row.Scan(&record.NotificationID, &readAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ReadRecord{}, storage.ErrNotFound
		}
		return storage.ReadRecord{}, fmt.Errorf("get read mark: %w", err)
	}
	record.ReadAt = fromMillis(readAt)
	return record, nil
}

// ListReadIDs returns all read marks keyed by notification id.
func (s *Store) ListReadIDs(ctx context.Context) (map[string]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT notification_id, read_at
FROM notification_reads
`)
	if err != nil {
		return nil, fmt.Errorf("list read marks: %w", err)
	}
	defer rows.Close()

	reads := map[string]time.Time{}
	for rows.Next() {
		var notificationID string
		var readAt int64
		if err := rows.Scan(&notificationID, &readAt); err != nil {
			return nil, fmt.Errorf("scan read mark row: %w", err)
		}
		reads[notificationID] = fromMillis(readAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate read mark rows: %w", err)
	}
	return reads, nil
}

// PruneReads deletes read marks that are not in the provided live id set.
// Regeneration retires ids when the underlying fact changes; their marks are
// dead weight once no generation can produce the id again.
func (s *Store) PruneReads(ctx context.Context, liveIDs []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	live := make(map[string]bool, len(liveIDs))
	for _, id := range liveIDs {
		live[strings.TrimSpace(id)] = true
	}

	reads, err := s.ListReadIDs(ctx)
	if err != nil {
		return 0, err
	}

	var pruned int64
	for id := range reads {
		if live[id] {
			continue
		}
		result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM notification_reads WHERE notification_id = ?`, id)
		if err != nil {
			return pruned, fmt.Errorf("prune read mark: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return pruned, fmt.Errorf("count pruned rows: %w", err)
		}
		pruned += affected
	}
	return pruned, nil
}
