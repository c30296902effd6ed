package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeServiceStore struct {
	bills        []Bill
	errands      []Errand
	appointments []Appointment
	records      map[string][]PaymentRecord

	listBillsErr error
}

func (f *fakeServiceStore) GetBill(_ context.Context, id string) (Bill, error) {
	for _, bill := range f.bills {
		if bill.ID == id {
			return bill, nil
		}
	}
	return Bill{}, ErrNotFound
}

func (f *fakeServiceStore) PutBill(context.Context, Bill) error { return nil }

func (f *fakeServiceStore) ListBills(context.Context) ([]Bill, error) {
	if f.listBillsErr != nil {
		return nil, f.listBillsErr
	}
	return f.bills, nil
}

func (f *fakeServiceStore) ListErrands(context.Context) ([]Errand, error) {
	return f.errands, nil
}

func (f *fakeServiceStore) ListAppointments(context.Context) ([]Appointment, error) {
	return f.appointments, nil
}

func (f *fakeServiceStore) ListPaymentMethods(context.Context) ([]PaymentMethod, error) {
	return nil, nil
}

func (f *fakeServiceStore) ListPaymentRecords(_ context.Context, billID string) ([]PaymentRecord, error) {
	return f.records[billID], nil
}

func TestTopPrioritiesRanksAcrossKinds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeServiceStore{
		bills: []Bill{
			{ID: "bill-1", Name: "Electric", Status: BillStatusUpcoming, DueDate: now.AddDate(0, 0, -4)},
			{ID: "bill-2", Name: "Internet", Status: BillStatusPaid, DueDate: now},
		},
		errands: []Errand{
			{ID: "errand-1", Description: "Renew passport", Priority: PriorityUrgent, Status: ErrandStatusPending, PreferredDate: now},
		},
		appointments: []Appointment{
			{ID: "appt-1", Title: "Dentist", Type: AppointmentMedical, StartsAt: now.AddDate(0, 0, 2)},
		},
	}
	svc := NewService(store, func() time.Time { return now })

	ranked, err := svc.TopPriorities(context.Background())
	if err != nil {
		t.Fatalf("TopPriorities() error = %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("TopPriorities() returned %d entries, want 3", len(ranked))
	}
	for _, entry := range ranked {
		if entry.ID == "bill-2" {
			t.Errorf("paid bill %q appeared in worklist", entry.ID)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].UrgencyScore > ranked[i-1].UrgencyScore {
			t.Errorf("entry %d score %d outranks entry %d score %d",
				i, ranked[i].UrgencyScore, i-1, ranked[i-1].UrgencyScore)
		}
	}
}

func TestTopPrioritiesPropagatesStoreError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("database locked")
	svc := NewService(&fakeServiceStore{listBillsErr: wantErr}, nil)

	if _, err := svc.TopPriorities(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("TopPriorities() error = %v, want %v", err, wantErr)
	}
}

func TestTopPrioritiesWithoutStore(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil)
	if _, err := svc.TopPriorities(context.Background()); !errors.Is(err, ErrStoreNotConfigured) {
		t.Errorf("TopPriorities() error = %v, want %v", err, ErrStoreNotConfigured)
	}
}

func TestPaymentHistoryReturnsRecords(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeServiceStore{
		bills: []Bill{{ID: "bill-1", Name: "Electric", Status: BillStatusUpcoming, DueDate: now}},
		records: map[string][]PaymentRecord{
			"bill-1": {
				{ID: "pay-1", BillID: "bill-1", Status: PaymentRecordFailed, FailureReason: "Card declined", CreatedAt: now.Add(-time.Hour)},
				{ID: "pay-2", BillID: "bill-1", Status: PaymentRecordSuccess, CreatedAt: now},
			},
		},
	}
	svc := NewService(store, func() time.Time { return now })

	records, err := svc.PaymentHistory(context.Background(), "bill-1")
	if err != nil {
		t.Fatalf("PaymentHistory() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("PaymentHistory() returned %d records, want 2", len(records))
	}
	if records[0].ID != "pay-1" || records[1].ID != "pay-2" {
		t.Errorf("PaymentHistory() order = %q, %q, want pay-1, pay-2", records[0].ID, records[1].ID)
	}
}

func TestPaymentHistoryUnknownBill(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeServiceStore{}, nil)
	if _, err := svc.PaymentHistory(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PaymentHistory() error = %v, want %v", err, ErrNotFound)
	}
}
