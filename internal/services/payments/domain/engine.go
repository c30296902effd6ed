// Package domain implements the automatic payment engine: the policy checks,
// retry bookkeeping, and state transitions applied to one bill per attempt.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
)

var (
	// ErrEngineNotConfigured indicates the engine is missing required wiring.
	ErrEngineNotConfigured = errors.New("payment engine is not configured")
)

// MaxRetryCount is the attempt count at which a bill becomes terminally
// failed and the engine stops touching it.
const MaxRetryCount = 3

// EventKind identifies one automation emission.
type EventKind string

const (
	EventPaymentSuccess EventKind = "payment-success"
	EventPaymentRetry   EventKind = "payment-retry"
	EventPaymentFailed  EventKind = "payment-failed"
	EventLimitExceeded  EventKind = "payment-limit"
	EventMethodMissing  EventKind = "payment-method-missing"
)

// Event records one automation emission for a bill. Events are append-only
// facts the notification inbox is rebuilt from.
type Event struct {
	ID        string
	BillID    string
	Kind      EventKind
	Attempt   int
	Reason    string
	CreatedAt time.Time
}

// Outcome classifies what one AttemptAutomaticPayment call did.
type Outcome string

const (
	// OutcomeSkipped means no policy applied: unknown bill, terminal state,
	// or auto-pay not configured. Nothing was written.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeLimitExceeded means the amount exceeded the auto-pay limit. The
	// bill was not touched; only an event was appended.
	OutcomeLimitExceeded Outcome = "limit-exceeded"
	// OutcomeMethodMissing means the configured payment method no longer
	// exists. The bill was not touched; only an event was appended.
	OutcomeMethodMissing Outcome = "method-missing"
	// OutcomePaid means the charge was approved and the bill is paid.
	OutcomePaid Outcome = "paid"
	// OutcomeRetryScheduled means the charge was declined and the bill stays
	// upcoming with an incremented retry count.
	OutcomeRetryScheduled Outcome = "retry-scheduled"
	// OutcomeFailed means the charge was declined on the final allowed
	// attempt and the bill is terminally failed.
	OutcomeFailed Outcome = "failed"
)

// Attempt is the result of one engine invocation.
type Attempt struct {
	Outcome Outcome
	Bill    obligations.Bill
	Event   *Event
}

// Store is the engine's persistence boundary. ApplyAttempt must persist the
// provided parts atomically; any nil part is omitted from the write.
type Store interface {
	GetBill(ctx context.Context, id string) (obligations.Bill, error)
	GetPaymentMethod(ctx context.Context, id string) (obligations.PaymentMethod, error)
	ApplyAttempt(ctx context.Context, bill *obligations.Bill, record *obligations.PaymentRecord, event *Event) error
}

// Engine decides whether to attempt an automatic payment for a bill,
// executes the attempt, and persists the outcome.
type Engine struct {
	store   Store
	charger Charger
	clock   func() time.Time
	newID   func() (string, error)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine constructs a payment engine. clock defaults to time.Now when nil.
func NewEngine(store Store, charger Charger, clock func() time.Time, newID func() (string, error)) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		store:   store,
		charger: charger,
		clock:   clock,
		newID:   newID,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockBill serializes attempts per bill id. Attempts for distinct bills
// proceed concurrently.
func (e *Engine) lockBill(billID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[billID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[billID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// AttemptAutomaticPayment runs one automatic payment attempt for the bill.
// Policy outcomes, including declines, are reported through Attempt; the
// error return is reserved for persistence and infrastructure failures.
func (e *Engine) AttemptAutomaticPayment(ctx context.Context, billID string) (Attempt, error) {
	if e == nil || e.store == nil || e.charger == nil || e.newID == nil {
		return Attempt{}, ErrEngineNotConfigured
	}
	billID = strings.TrimSpace(billID)
	if billID == "" {
		return Attempt{}, fmt.Errorf("bill id is required")
	}

	unlock := e.lockBill(billID)
	defer unlock()

	bill, err := e.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, obligations.ErrNotFound) {
			return Attempt{Outcome: OutcomeSkipped}, nil
		}
		return Attempt{}, fmt.Errorf("load bill: %w", err)
	}

	// Paid and terminally failed bills never self-transition. Repeat
	// invocations on a terminal bill are no-ops.
	if bill.Status != obligations.BillStatusUpcoming || bill.RetryCount >= MaxRetryCount {
		return Attempt{Outcome: OutcomeSkipped, Bill: bill}, nil
	}
	if !bill.AutoPayEnabled || bill.PaymentMethodID == "" {
		return Attempt{Outcome: OutcomeSkipped, Bill: bill}, nil
	}

	now := e.clock().UTC()

	if bill.AutoPayLimitCents > 0 && bill.AmountCents > bill.AutoPayLimitCents {
		event, eventErr := e.newEvent(bill.ID, EventLimitExceeded, bill.RetryCount, "", now)
		if eventErr != nil {
			return Attempt{}, eventErr
		}
		if err := e.store.ApplyAttempt(ctx, nil, nil, &event); err != nil {
			return Attempt{}, fmt.Errorf("persist limit event: %w", err)
		}
		return Attempt{Outcome: OutcomeLimitExceeded, Bill: bill, Event: &event}, nil
	}

	if _, err := e.store.GetPaymentMethod(ctx, bill.PaymentMethodID); err != nil {
		if !errors.Is(err, obligations.ErrNotFound) {
			return Attempt{}, fmt.Errorf("load payment method: %w", err)
		}
		event, eventErr := e.newEvent(bill.ID, EventMethodMissing, bill.RetryCount, "Payment method not found", now)
		if eventErr != nil {
			return Attempt{}, eventErr
		}
		if err := e.store.ApplyAttempt(ctx, nil, nil, &event); err != nil {
			return Attempt{}, fmt.Errorf("persist method event: %w", err)
		}
		return Attempt{Outcome: OutcomeMethodMissing, Bill: bill, Event: &event}, nil
	}

	result, err := e.charger.Charge(ctx, ChargeRequest{
		BillID:          bill.ID,
		AmountCents:     bill.AmountCents,
		PaymentMethodID: bill.PaymentMethodID,
	})
	if err != nil {
		return Attempt{}, fmt.Errorf("execute charge: %w", err)
	}

	attemptNumber := bill.RetryCount + 1
	bill.LastPaymentAttempt = &now
	bill.UpdatedAt = now

	recordID, err := e.newID()
	if err != nil {
		return Attempt{}, fmt.Errorf("generate payment record id: %w", err)
	}
	record := obligations.PaymentRecord{
		ID:              recordID,
		BillID:          bill.ID,
		AmountCents:     bill.AmountCents,
		PaymentMethodID: bill.PaymentMethodID,
		CreatedAt:       now,
	}

	if result.Approved {
		bill.Status = obligations.BillStatusPaid
		bill.RetryCount = 0
		record.Status = obligations.PaymentRecordSuccess

		event, eventErr := e.newEvent(bill.ID, EventPaymentSuccess, attemptNumber, "", now)
		if eventErr != nil {
			return Attempt{}, eventErr
		}
		if err := e.store.ApplyAttempt(ctx, &bill, &record, &event); err != nil {
			return Attempt{}, fmt.Errorf("persist successful attempt: %w", err)
		}
		return Attempt{Outcome: OutcomePaid, Bill: bill, Event: &event}, nil
	}

	bill.RetryCount++
	record.Status = obligations.PaymentRecordFailed
	record.FailureReason = result.FailureReason

	kind := EventPaymentRetry
	outcome := OutcomeRetryScheduled
	if bill.RetryCount >= MaxRetryCount {
		bill.Status = obligations.BillStatusPaymentFailed
		kind = EventPaymentFailed
		outcome = OutcomeFailed
	}

	event, eventErr := e.newEvent(bill.ID, kind, attemptNumber, result.FailureReason, now)
	if eventErr != nil {
		return Attempt{}, eventErr
	}
	if err := e.store.ApplyAttempt(ctx, &bill, &record, &event); err != nil {
		return Attempt{}, fmt.Errorf("persist failed attempt: %w", err)
	}
	return Attempt{Outcome: outcome, Bill: bill, Event: &event}, nil
}

func (e *Engine) newEvent(billID string, kind EventKind, attempt int, reason string, now time.Time) (Event, error) {
	id, err := e.newID()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}
	return Event{
		ID:        id,
		BillID:    billID,
		Kind:      kind,
		Attempt:   attempt,
		Reason:    reason,
		CreatedAt: now,
	}, nil
}
