// Package domain defines the obligation model: bills, errands, appointments,
// payment methods, and the urgency scoring and ranking behavior built on them.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates an obligation record was not found.
	ErrNotFound = errors.New("obligation not found")
	// ErrConflict indicates a write conflicted with existing uniqueness constraints.
	ErrConflict = errors.New("obligation conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("obligation store is not configured")
)

// BillStatus is a stored bill lifecycle state.
//
// Overdue is intentionally absent: it is a display state derived from the due
// date, never a transition target.
type BillStatus string

const (
	BillStatusUpcoming      BillStatus = "upcoming"
	BillStatusPaid          BillStatus = "paid"
	BillStatusPaymentFailed BillStatus = "payment-failed"
)

// Recurrence describes how often a bill repeats.
type Recurrence string

const (
	RecurrenceOneTime Recurrence = "one-time"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// IsRecurring reports whether the recurrence repeats.
func (r Recurrence) IsRecurring() bool {
	return r != RecurrenceOneTime && r != ""
}

// Bill is one payable obligation.
type Bill struct {
	ID                 string
	Name               string
	AmountCents        int64
	DueDate            time.Time
	Recurrence         Recurrence
	Status             BillStatus
	AutoPayEnabled     bool
	AutoPayLimitCents  int64 // 0 means no limit configured
	PaymentMethodID    string
	RetryCount         int
	LastPaymentAttempt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayStatus returns the stored status, substituting the derived overdue
// state for upcoming bills whose due date has passed.
func (b Bill) DisplayStatus(now time.Time) string {
	if b.Status == BillStatusUpcoming && DaysUntil(now, b.DueDate) < 0 {
		return "overdue"
	}
	return string(b.Status)
}

// PaymentRecordStatus is the outcome recorded for one payment attempt.
type PaymentRecordStatus string

const (
	PaymentRecordSuccess PaymentRecordStatus = "success"
	PaymentRecordFailed  PaymentRecordStatus = "failed"
	PaymentRecordPending PaymentRecordStatus = "pending"
)

// PaymentRecord is one append-only entry in a bill's payment history.
type PaymentRecord struct {
	ID              string
	BillID          string
	AmountCents     int64
	Status          PaymentRecordStatus
	PaymentMethodID string
	FailureReason   string
	CreatedAt       time.Time
}

// ErrandStatus is an errand lifecycle state.
type ErrandStatus string

const (
	ErrandStatusPending    ErrandStatus = "pending"
	ErrandStatusInProgress ErrandStatus = "in-progress"
	ErrandStatusDone       ErrandStatus = "done"
)

// Errand is one task obligation with a preferred completion date.
type Errand struct {
	ID            string
	Description   string
	Priority      Priority
	Status        ErrandStatus
	PreferredDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppointmentType classifies an appointment for prioritization purposes.
type AppointmentType string

const (
	AppointmentPersonal AppointmentType = "personal"
	AppointmentFamily   AppointmentType = "family"
	AppointmentMedical  AppointmentType = "medical"
)

// Appointment is one scheduled obligation.
type Appointment struct {
	ID        string
	Title     string
	Type      AppointmentType
	StartsAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentMethodKind classifies a stored payment method.
type PaymentMethodKind string

const (
	PaymentMethodCard   PaymentMethodKind = "card"
	PaymentMethodBank   PaymentMethodKind = "bank"
	PaymentMethodPayNow PaymentMethodKind = "paynow"
)

// PaymentMethod is one stored way to pay a bill.
type PaymentMethod struct {
	ID              string
	Kind            PaymentMethodKind
	Label           string
	CardLast4       string
	CardExpiryMonth int
	CardExpiryYear  int
	CreatedAt       time.Time
}

// DaysUntil returns the calendar-day distance from now to due, negative when
// due is in the past. Both instants are truncated to UTC midnight first so a
// bill due later today still counts as due today.
func DaysUntil(now time.Time, due time.Time) int {
	nowDay := truncateToDay(now)
	dueDay := truncateToDay(due)
	return int(dueDay.Sub(nowDay).Hours() / 24)
}

func truncateToDay(value time.Time) time.Time {
	utc := value.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
