// Package storage defines the persisted read-state shape for the
// notification inbox. Notification content is never stored; only id-keyed
// read marks survive regeneration.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested read mark does not exist.
var ErrNotFound = errors.New("record not found")

// ReadRecord is one persisted read mark.
type ReadRecord struct {
	NotificationID string
	ReadAt         time.Time
}

// ReadStore persists notification read marks.
type ReadStore interface {
	PutRead(ctx context.Context, notificationID string, readAt time.Time) error
	GetRead(ctx context.Context, notificationID string) (ReadRecord, error)
	ListReadIDs(ctx context.Context) (map[string]time.Time, error)
	PruneReads(ctx context.Context, liveIDs []string) (int64, error)
}
