package domain

import (
	"fmt"
	"sort"
	"time"
)

// Worklist bounds and navigation targets for ranked priorities.
const (
	TopPrioritiesLimit = 3

	appointmentLookaheadDays = 7

	ActionURLBills        = "/bills"
	ActionURLErrands      = "/errands"
	ActionURLAppointments = "/appointments"
)

// ObligationKind labels the entity type behind a ranked priority.
type ObligationKind string

const (
	KindBill        ObligationKind = "bill"
	KindErrand      ObligationKind = "errand"
	KindAppointment ObligationKind = "appointment"
)

// RankedPriority is one entry of the bounded top-priorities worklist.
type RankedPriority struct {
	ID           string
	Kind         ObligationKind
	Title        string
	UrgencyScore int
	DueDate      time.Time
	Reason       string
	ActionURL    string
}

// RankTopPriorities scores every open obligation and returns the top entries,
// highest urgency first.
//
// Bills with status paid and errands with status done are excluded;
// appointments are considered only within a 7-day lookahead window starting
// today. Equal scores keep input order: bills, then errands, then
// appointments, each in slice order.
func RankTopPriorities(now time.Time, bills []Bill, errands []Errand, appointments []Appointment) []RankedPriority {
	ranked := make([]RankedPriority, 0, len(bills)+len(errands)+len(appointments))

	for _, bill := range bills {
		if bill.Status == BillStatusPaid {
			continue
		}
		days := DaysUntil(now, bill.DueDate)
		updatedAt := bill.UpdatedAt
		ranked = append(ranked, RankedPriority{
			ID:           bill.ID,
			Kind:         KindBill,
			Title:        bill.Name,
			UrgencyScore: ComputeUrgency(days, PriorityNormal, bill.Recurrence.IsRecurring(), lastInteraction(updatedAt), now),
			DueDate:      bill.DueDate,
			Reason:       billReason(days),
			ActionURL:    ActionURLBills,
		})
	}

	for _, errand := range errands {
		if errand.Status == ErrandStatusDone {
			continue
		}
		days := DaysUntil(now, errand.PreferredDate)
		ranked = append(ranked, RankedPriority{
			ID:           errand.ID,
			Kind:         KindErrand,
			Title:        errand.Description,
			UrgencyScore: ComputeUrgency(days, errand.Priority, false, lastInteraction(errand.UpdatedAt), now),
			DueDate:      errand.PreferredDate,
			Reason:       errandReason(days),
			ActionURL:    ActionURLErrands,
		})
	}

	for _, appointment := range appointments {
		days := DaysUntil(now, appointment.StartsAt)
		if days < 0 || days > appointmentLookaheadDays {
			continue
		}
		priority := PriorityNormal
		if appointment.Type == AppointmentMedical {
			priority = PriorityHigh
		}
		ranked = append(ranked, RankedPriority{
			ID:           appointment.ID,
			Kind:         KindAppointment,
			Title:        appointment.Title,
			UrgencyScore: ComputeUrgency(days, priority, false, lastInteraction(appointment.UpdatedAt), now),
			DueDate:      appointment.StartsAt,
			Reason:       appointmentReason(days),
			ActionURL:    ActionURLAppointments,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UrgencyScore > ranked[j].UrgencyScore
	})

	if len(ranked) > TopPrioritiesLimit {
		ranked = ranked[:TopPrioritiesLimit]
	}
	return ranked
}

func lastInteraction(updatedAt time.Time) *time.Time {
	if updatedAt.IsZero() {
		return nil
	}
	return &updatedAt
}

func billReason(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

func errandReason(days int) string {
	switch {
	case days < 0:
		return "Past preferred date"
	case days == 0:
		return "Preferred date is today"
	default:
		return fmt.Sprintf("Preferred date in %d days", days)
	}
}

func appointmentReason(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", days)
	}
}
