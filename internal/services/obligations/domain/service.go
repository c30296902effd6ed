package domain

import (
	"context"
	"time"
)

// Store is the domain persistence boundary for obligation reads and writes.
type Store interface {
	GetBill(ctx context.Context, id string) (Bill, error)
	PutBill(ctx context.Context, bill Bill) error
	ListBills(ctx context.Context) ([]Bill, error)
	ListErrands(ctx context.Context) ([]Errand, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	ListPaymentRecords(ctx context.Context, billID string) ([]PaymentRecord, error)
}

// Service exposes read-side obligation use-cases over a Store.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService constructs obligation read use-cases.
func NewService(store Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// TopPriorities loads all open obligations and returns the bounded ranked
// worklist.
func (s *Service) TopPriorities(ctx context.Context) ([]RankedPriority, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	errands, err := s.store.ListErrands(ctx)
	if err != nil {
		return nil, err
	}
	appointments, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	return RankTopPriorities(s.clock().UTC(), bills, errands, appointments), nil
}

// PaymentHistory returns the append-only payment records for one bill,
// oldest first.
func (s *Service) PaymentHistory(ctx context.Context, billID string) ([]PaymentRecord, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentRecords(ctx, billID)
}
