package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/duebook/duebook/internal/services/notifications/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "notifications.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Errorf("Close returned error: %v", closeErr)
		}
	})
	return store
}

func TestPutReadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	readAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := store.PutRead(ctx, "bill-overdue-b-1", readAt); err != nil {
		t.Fatalf("PutRead returned error: %v", err)
	}

	record, err := store.GetRead(ctx, "bill-overdue-b-1")
	if err != nil {
		t.Fatalf("GetRead returned error: %v", err)
	}
	if record.NotificationID != "bill-overdue-b-1" || !record.ReadAt.Equal(readAt) {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestPutReadKeepsEarliestMark(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := store.PutRead(ctx, "bill-due-today-b-1", first); err != nil {
		t.Fatalf("PutRead returned error: %v", err)
	}
	if err := store.PutRead(ctx, "bill-due-today-b-1", first.Add(time.Hour)); err != nil {
		t.Fatalf("second PutRead returned error: %v", err)
	}

	record, err := store.GetRead(ctx, "bill-due-today-b-1")
	if err != nil {
		t.Fatalf("GetRead returned error: %v", err)
	}
	if !record.ReadAt.Equal(first) {
		t.Fatalf("ReadAt = %v, want earliest %v", record.ReadAt, first)
	}
}

func TestGetReadNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.GetRead(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetRead error = %v, want ErrNotFound", err)
	}
}

func TestListReadIDs(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	readAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"payment-failed-b-1", "errand-urgent-e-1"} {
		if err := store.PutRead(ctx, id, readAt); err != nil {
			t.Fatalf("PutRead(%s) returned error: %v", id, err)
		}
	}

	reads, err := store.ListReadIDs(ctx)
	if err != nil {
		t.Fatalf("ListReadIDs returned error: %v", err)
	}
	if len(reads) != 2 {
		t.Fatalf("ListReadIDs returned %d marks, want 2", len(reads))
	}
	if _, ok := reads["payment-failed-b-1"]; !ok {
		t.Fatal("missing payment-failed-b-1 mark")
	}
}

func TestPruneReads(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	readAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"bill-due-today-b-1", "bill-due-1day-b-2", "appointment-today-a-1"} {
		if err := store.PutRead(ctx, id, readAt); err != nil {
			t.Fatalf("PutRead(%s) returned error: %v", id, err)
		}
	}

	pruned, err := store.PruneReads(ctx, []string{"bill-due-today-b-1"})
	if err != nil {
		t.Fatalf("PruneReads returned error: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("PruneReads removed %d marks, want 2", pruned)
	}

	reads, err := store.ListReadIDs(ctx)
	if err != nil {
		t.Fatalf("ListReadIDs returned error: %v", err)
	}
	if len(reads) != 1 {
		t.Fatalf("expected 1 surviving mark, got %d", len(reads))
	}
	if _, ok := reads["bill-due-today-b-1"]; !ok {
		t.Fatal("live mark was pruned")
	}
}

func TestPutReadValidation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutRead(ctx, "  ", time.Now()); err == nil {
		t.Fatal("expected error for blank notification id")
	}
	if err := store.PutRead(ctx, "bill-due-today-b-1", time.Time{}); err == nil {
		t.Fatal("expected error for zero read timestamp")
	}
}
