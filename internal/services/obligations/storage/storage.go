// Package storage defines persisted record shapes and sentinel errors for the
// obligation store.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write violated a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
)

// BillRecord is one persisted bill row.
type BillRecord struct {
	ID                 string
	Name               string
	AmountCents        int64
	DueDate            time.Time
	Recurrence         string
	Status             string
	AutoPayEnabled     bool
	AutoPayLimitCents  int64
	PaymentMethodID    string
	RetryCount         int
	LastPaymentAttempt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ErrandRecord is one persisted errand row.
type ErrandRecord struct {
	ID            string
	Description   string
	Priority      string
	Status        string
	PreferredDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppointmentRecord is one persisted appointment row.
type AppointmentRecord struct {
	ID        string
	Title     string
	Type      string
	StartsAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentMethodRecord is one persisted payment method row.
type PaymentMethodRecord struct {
	ID              string
	Kind            string
	Label           string
	CardLast4       string
	CardExpiryMonth int
	CardExpiryYear  int
	CreatedAt       time.Time
}

// PaymentHistoryRecord is one append-only payment attempt row. Rows are never
// updated after insert.
type PaymentHistoryRecord struct {
	ID              string
	BillID          string
	AmountCents     int64
	Status          string
	PaymentMethodID string
	FailureReason   string
	CreatedAt       time.Time
}

// PaymentEventRecord is one append-only automation emission row.
type PaymentEventRecord struct {
	ID        string
	BillID    string
	Kind      string
	Attempt   int
	Reason    string
	CreatedAt time.Time
}

// AttemptWrite is the atomic unit persisted for one payment attempt: the
// updated bill, the appended history row, and the appended event row. History
// and Event may be nil for event-only outcomes such as a limit short-circuit.
type AttemptWrite struct {
	Bill    *BillRecord
	History *PaymentHistoryRecord
	Event   *PaymentEventRecord
}

// Store persists obligation state.
type Store interface {
	PutBill(ctx context.Context, record BillRecord) error
	GetBill(ctx context.Context, id string) (BillRecord, error)
	ListBills(ctx context.Context) ([]BillRecord, error)
	ListAutoPayCandidates(ctx context.Context, dueBy time.Time, maxRetries int) ([]BillRecord, error)
	PutErrand(ctx context.Context, record ErrandRecord) error
	ListErrands(ctx context.Context) ([]ErrandRecord, error)
	PutAppointment(ctx context.Context, record AppointmentRecord) error
	ListAppointments(ctx context.Context) ([]AppointmentRecord, error)
	PutPaymentMethod(ctx context.Context, record PaymentMethodRecord) error
	GetPaymentMethod(ctx context.Context, id string) (PaymentMethodRecord, error)
	ListPaymentMethods(ctx context.Context) ([]PaymentMethodRecord, error)
	ListPaymentRecords(ctx context.Context, billID string) ([]PaymentHistoryRecord, error)
	LatestPaymentEvents(ctx context.Context) ([]PaymentEventRecord, error)
	ApplyAttempt(ctx context.Context, write AttemptWrite) error
}
