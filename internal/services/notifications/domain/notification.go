// Package domain implements the notification inbox: deterministic emission
// from obligation state and automation events, merged with persisted
// read-state.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a notification id is not present in the inbox.
	ErrNotFound = errors.New("notification not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("notification store is not configured")
)

// Priority orders notifications for presentation.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority validates a raw priority value. Unknown values are an error,
// never silently defaulted.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(raw) {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(raw), nil
	default:
		return "", fmt.Errorf("unknown notification priority %q", raw)
	}
}

// rank returns the sort position of the priority, lower first.
func (p Priority) rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Type classifies what a notification is about.
type Type string

const (
	TypeBill           Type = "bill"
	TypeAppointment    Type = "appointment"
	TypeErrand         Type = "errand"
	TypePayment        Type = "payment"
	TypePaymentFailure Type = "payment-failure"
)

// Notification is one inbox item. Content is regenerated from live state on
// every read; only the id and IsRead survive across reads, which is why the
// id must be a deterministic function of the underlying fact.
type Notification struct {
	ID        string
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	Timestamp time.Time
	IsRead    bool
	ActionURL string
	RelatedID string
}
