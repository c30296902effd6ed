package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
	obligationsqlite "github.com/duebook/duebook/internal/services/obligations/storage/sqlite"
	payments "github.com/duebook/duebook/internal/services/payments/domain"
)

func openTestAdapter(t *testing.T) *StoreAdapter {
	t.Helper()

	store, err := obligationsqlite.Open(filepath.Join(t.TempDir(), "obligations.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Errorf("Close returned error: %v", closeErr)
		}
	})
	return NewStoreAdapter(store)
}

func domainBill(id string) obligations.Bill {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return obligations.Bill{
		ID:              id,
		Name:            "Water Bill",
		AmountCents:     4500,
		DueDate:         time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Recurrence:      obligations.RecurrenceMonthly,
		Status:          obligations.BillStatusUpcoming,
		AutoPayEnabled:  true,
		PaymentMethodID: "method-1",
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func TestAdapterBillRoundTrip(t *testing.T) {
	t.Parallel()

	adapter := openTestAdapter(t)
	ctx := context.Background()
	bill := domainBill("bill-1")

	if err := adapter.PutBill(ctx, bill); err != nil {
		t.Fatalf("PutBill returned error: %v", err)
	}

	got, err := adapter.GetBill(ctx, "bill-1")
	if err != nil {
		t.Fatalf("GetBill returned error: %v", err)
	}
	if got.Name != bill.Name || got.Recurrence != obligations.RecurrenceMonthly || got.Status != obligations.BillStatusUpcoming {
		t.Fatalf("unexpected bill %+v", got)
	}
}

func TestAdapterMapsNotFound(t *testing.T) {
	t.Parallel()

	adapter := openTestAdapter(t)
	if _, err := adapter.GetBill(context.Background(), "missing"); !errors.Is(err, obligations.ErrNotFound) {
		t.Fatalf("GetBill error = %v, want domain ErrNotFound", err)
	}
	if _, err := adapter.GetPaymentMethod(context.Background(), "missing"); !errors.Is(err, obligations.ErrNotFound) {
		t.Fatalf("GetPaymentMethod error = %v, want domain ErrNotFound", err)
	}
}

func TestAdapterApplyAttemptRoundTrip(t *testing.T) {
	t.Parallel()

	adapter := openTestAdapter(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)

	bill := domainBill("bill-1")
	if err := adapter.PutBill(ctx, bill); err != nil {
		t.Fatalf("PutBill returned error: %v", err)
	}

	bill.Status = obligations.BillStatusPaid
	bill.LastPaymentAttempt = &now
	bill.UpdatedAt = now
	record := obligations.PaymentRecord{
		ID:              "record-1",
		BillID:          "bill-1",
		AmountCents:     bill.AmountCents,
		Status:          obligations.PaymentRecordSuccess,
		PaymentMethodID: "method-1",
		CreatedAt:       now,
	}
	event := payments.Event{
		ID:        "event-1",
		BillID:    "bill-1",
		Kind:      payments.EventPaymentSuccess,
		Attempt:   1,
		CreatedAt: now,
	}

	if err := adapter.ApplyAttempt(ctx, &bill, &record, &event); err != nil {
		t.Fatalf("ApplyAttempt returned error: %v", err)
	}

	got, err := adapter.GetBill(ctx, "bill-1")
	if err != nil {
		t.Fatalf("GetBill returned error: %v", err)
	}
	if got.Status != obligations.BillStatusPaid {
		t.Fatalf("Status = %q, want paid", got.Status)
	}

	history, err := adapter.ListPaymentRecords(ctx, "bill-1")
	if err != nil {
		t.Fatalf("ListPaymentRecords returned error: %v", err)
	}
	if len(history) != 1 || history[0].Status != obligations.PaymentRecordSuccess {
		t.Fatalf("unexpected history %+v", history)
	}

	events, err := adapter.LatestPaymentEvents(ctx)
	if err != nil {
		t.Fatalf("LatestPaymentEvents returned error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != payments.EventPaymentSuccess {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestAdapterDueAutoPayBillIDs(t *testing.T) {
	t.Parallel()

	adapter := openTestAdapter(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

	due := domainBill("bill-due")
	manual := domainBill("bill-manual")
	manual.AutoPayEnabled = false

	for _, bill := range []obligations.Bill{due, manual} {
		if err := adapter.PutBill(ctx, bill); err != nil {
			t.Fatalf("PutBill(%s) returned error: %v", bill.ID, err)
		}
	}

	ids, err := adapter.DueAutoPayBillIDs(ctx, now)
	if err != nil {
		t.Fatalf("DueAutoPayBillIDs returned error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "bill-due" {
		t.Fatalf("unexpected candidate ids %v", ids)
	}
}
