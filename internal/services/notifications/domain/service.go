package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
	payments "github.com/duebook/duebook/internal/services/payments/domain"
)

// Facts loads the live obligation state one inbox generation reads from.
type Facts interface {
	ListBills(ctx context.Context) ([]obligations.Bill, error)
	ListErrands(ctx context.Context) ([]obligations.Errand, error)
	ListAppointments(ctx context.Context) ([]obligations.Appointment, error)
	ListPaymentMethods(ctx context.Context) ([]obligations.PaymentMethod, error)
	LatestPaymentEvents(ctx context.Context) ([]payments.Event, error)
}

// ReadStore persists the id-keyed read marks that survive regeneration.
type ReadStore interface {
	PutRead(ctx context.Context, notificationID string, readAt time.Time) error
	ListReadIDs(ctx context.Context) (map[string]time.Time, error)
}

// Service regenerates the notification inbox from live state and merges the
// persisted read marks back in.
type Service struct {
	facts Facts
	reads ReadStore
	loc   Localizer
	clock func() time.Time
}

// NewService constructs the inbox service. clock defaults to time.Now when nil.
func NewService(facts Facts, reads ReadStore, loc Localizer, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{facts: facts, reads: reads, loc: loc, clock: clock}
}

// Inbox returns the current notification set, read-state merged, sorted by
// priority rank then timestamp descending.
func (s *Service) Inbox(ctx context.Context) ([]Notification, error) {
	if s == nil || s.facts == nil || s.reads == nil {
		return nil, ErrStoreNotConfigured
	}

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	reads, err := s.reads.ListReadIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load read marks: %w", err)
	}

	notifications := Generate(s.loc, s.clock().UTC(), snapshot)
	for i := range notifications {
		if _, err := ParsePriority(string(notifications[i].Priority)); err != nil {
			return nil, err
		}
		if _, ok := reads[notifications[i].ID]; ok {
			notifications[i].IsRead = true
		}
	}
	return notifications, nil
}

// MarkRead records a read mark for the notification id. The mark is keyed by
// the deterministic id, so it keeps applying to regenerated content.
func (s *Service) MarkRead(ctx context.Context, notificationID string) error {
	if s == nil || s.reads == nil {
		return ErrStoreNotConfigured
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return fmt.Errorf("notification id is required")
	}
	if err := s.reads.PutRead(ctx, notificationID, s.clock().UTC()); err != nil {
		return fmt.Errorf("persist read mark: %w", err)
	}
	return nil
}

// UnreadCount returns how many current notifications have no read mark.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	notifications, err := s.Inbox(ctx)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, notification := range notifications {
		if !notification.IsRead {
			unread++
		}
	}
	return unread, nil
}

func (s *Service) loadSnapshot(ctx context.Context) (Snapshot, error) {
	bills, err := s.facts.ListBills(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load bills: %w", err)
	}
	errands, err := s.facts.ListErrands(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load errands: %w", err)
	}
	appointments, err := s.facts.ListAppointments(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load appointments: %w", err)
	}
	methods, err := s.facts.ListPaymentMethods(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load payment methods: %w", err)
	}
	events, err := s.facts.LatestPaymentEvents(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load payment events: %w", err)
	}
	return Snapshot{
		Bills:          bills,
		Errands:        errands,
		Appointments:   appointments,
		PaymentMethods: methods,
		Events:         events,
	}, nil
}
