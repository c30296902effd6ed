package domain

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/message"

	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
	payments "github.com/duebook/duebook/internal/services/payments/domain"
)

const actionURLPayments = "/payments"

// Localizer is the minimal message-printer contract required for copy.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Snapshot is the live obligation state one inbox generation reads from.
// Events holds the most recent automation event per bill.
type Snapshot struct {
	Bills          []obligations.Bill
	Errands        []obligations.Errand
	Appointments   []obligations.Appointment
	PaymentMethods []obligations.PaymentMethod
	Events         []payments.Event
}

// Generate maps the snapshot to the full notification set, unread, sorted by
// priority rank then timestamp descending with id as the final tiebreak.
// Every id is a deterministic function of the fact it represents so the
// read-state merge survives regeneration.
func Generate(loc Localizer, now time.Time, snapshot Snapshot) []Notification {
	now = now.UTC()

	var notifications []Notification
	notifications = append(notifications, billNotifications(loc, now, snapshot.Bills)...)
	notifications = append(notifications, appointmentNotifications(loc, now, snapshot.Appointments)...)
	notifications = append(notifications, errandNotifications(loc, now, snapshot.Errands)...)
	notifications = append(notifications, paymentMethodNotifications(loc, now, snapshot.PaymentMethods)...)
	notifications = append(notifications, paymentEventNotifications(loc, snapshot.Events, snapshot.Bills)...)

	sort.SliceStable(notifications, func(i, j int) bool {
		left, right := notifications[i], notifications[j]
		if left.Priority.rank() != right.Priority.rank() {
			return left.Priority.rank() < right.Priority.rank()
		}
		if !left.Timestamp.Equal(right.Timestamp) {
			return left.Timestamp.After(right.Timestamp)
		}
		return left.ID < right.ID
	})
	return notifications
}

func billNotifications(loc Localizer, now time.Time, bills []obligations.Bill) []Notification {
	var notifications []Notification
	for _, bill := range bills {
		if bill.Status == obligations.BillStatusPaid {
			continue
		}
		// Auto-pay bills are handled by the automation engine; reminder
		// notifications would only duplicate its events.
		if bill.AutoPayEnabled {
			continue
		}

		daysUntil := obligations.DaysUntil(now, bill.DueDate)
		amount := formatCents(bill.AmountCents)
		base := Notification{
			Type:      TypeBill,
			Timestamp: now,
			ActionURL: obligations.ActionURLBills,
			RelatedID: bill.ID,
		}

		switch {
		case daysUntil < 0:
			base.ID = "bill-overdue-" + bill.ID
			base.Priority = PriorityUrgent
			base.Title = loc.Sprintf("Overdue Bill")
			base.Message = loc.Sprintf("%s is %d days overdue ($%s)", bill.Name, -daysUntil, amount)
		case daysUntil == 0:
			base.ID = "bill-due-today-" + bill.ID
			base.Priority = PriorityHigh
			base.Title = loc.Sprintf("Bill Due Today")
			base.Message = loc.Sprintf("%s is due today ($%s)", bill.Name, amount)
		case daysUntil == 1:
			base.ID = "bill-due-1day-" + bill.ID
			base.Priority = PriorityHigh
			base.Title = loc.Sprintf("Bill Due Tomorrow")
			base.Message = loc.Sprintf("%s is due tomorrow ($%s)", bill.Name, amount)
		case daysUntil == 3:
			base.ID = "bill-due-3days-" + bill.ID
			base.Priority = PriorityMedium
			base.Title = loc.Sprintf("Bill Due Soon")
			base.Message = loc.Sprintf("%s is due in 3 days ($%s)", bill.Name, amount)
		case daysUntil == 7:
			base.ID = "bill-due-7days-" + bill.ID
			base.Priority = PriorityLow
			base.Title = loc.Sprintf("Upcoming Bill")
			base.Message = loc.Sprintf("%s is due in 7 days ($%s)", bill.Name, amount)
		default:
			continue
		}
		notifications = append(notifications, base)
	}
	return notifications
}

func appointmentNotifications(loc Localizer, now time.Time, appointments []obligations.Appointment) []Notification {
	var notifications []Notification
	for _, appointment := range appointments {
		daysUntil := obligations.DaysUntil(now, appointment.StartsAt)
		startTime := appointment.StartsAt.UTC().Format("3:04 PM")
		base := Notification{
			Type:      TypeAppointment,
			Timestamp: now,
			ActionURL: obligations.ActionURLAppointments,
			RelatedID: appointment.ID,
		}

		switch {
		case daysUntil == 0:
			base.ID = "appointment-today-" + appointment.ID
			base.Priority = PriorityHigh
			base.Title = loc.Sprintf("Appointment Today")
			base.Message = loc.Sprintf("%s at %s", appointment.Title, startTime)
		case daysUntil == 1:
			base.ID = "appointment-1day-" + appointment.ID
			base.Priority = PriorityMedium
			base.Title = loc.Sprintf("Appointment Tomorrow")
			base.Message = loc.Sprintf("%s at %s", appointment.Title, startTime)
		case daysUntil > 1 && daysUntil <= 7:
			base.ID = "appointment-week-" + appointment.ID
			base.Priority = PriorityLow
			base.Title = loc.Sprintf("Upcoming Appointment")
			base.Message = loc.Sprintf("%s in %d days at %s", appointment.Title, daysUntil, startTime)
		default:
			continue
		}
		notifications = append(notifications, base)
	}
	return notifications
}

func errandNotifications(loc Localizer, now time.Time, errands []obligations.Errand) []Notification {
	var notifications []Notification
	for _, errand := range errands {
		if errand.Priority == obligations.PriorityUrgent && errand.Status == obligations.ErrandStatusPending {
			notifications = append(notifications, Notification{
				ID:        "errand-urgent-" + errand.ID,
				Type:      TypeErrand,
				Priority:  PriorityHigh,
				Title:     loc.Sprintf("Urgent Errand Pending"),
				Message:   loc.Sprintf("%s", errand.Description),
				Timestamp: now,
				ActionURL: obligations.ActionURLErrands,
				RelatedID: errand.ID,
			})
		}
		if errand.Status == obligations.ErrandStatusInProgress {
			notifications = append(notifications, Notification{
				ID:        "errand-progress-" + errand.ID,
				Type:      TypeErrand,
				Priority:  PriorityMedium,
				Title:     loc.Sprintf("Errand In Progress"),
				Message:   loc.Sprintf("Your errand is now in progress: %s", errand.Description),
				Timestamp: now,
				ActionURL: obligations.ActionURLErrands,
				RelatedID: errand.ID,
			})
		}
	}
	return notifications
}

func paymentMethodNotifications(loc Localizer, now time.Time, methods []obligations.PaymentMethod) []Notification {
	var notifications []Notification
	currentYear, currentMonth, _ := now.UTC().Date()
	nextMonthYear, nextMonth := currentYear, int(currentMonth)+1
	if nextMonth > 12 {
		nextMonth = 1
		nextMonthYear++
	}

	for _, method := range methods {
		if method.Kind != obligations.PaymentMethodCard || method.CardExpiryMonth == 0 || method.CardExpiryYear == 0 {
			continue
		}

		switch {
		case method.CardExpiryYear == currentYear && method.CardExpiryMonth == int(currentMonth):
			notifications = append(notifications, Notification{
				ID:        "method-expiring-" + method.ID,
				Type:      TypePayment,
				Priority:  PriorityHigh,
				Title:     loc.Sprintf("Card Expiring Soon"),
				Message:   loc.Sprintf("Your card ending in %s expires this month", method.CardLast4),
				Timestamp: now,
				ActionURL: actionURLPayments,
				RelatedID: method.ID,
			})
		case method.CardExpiryYear == nextMonthYear && method.CardExpiryMonth == nextMonth:
			notifications = append(notifications, Notification{
				ID:        "method-expiring-next-" + method.ID,
				Type:      TypePayment,
				Priority:  PriorityMedium,
				Title:     loc.Sprintf("Card Expiring Next Month"),
				Message:   loc.Sprintf("Your card ending in %s expires next month", method.CardLast4),
				Timestamp: now,
				ActionURL: actionURLPayments,
				RelatedID: method.ID,
			})
		}
	}
	return notifications
}

func paymentEventNotifications(loc Localizer, events []payments.Event, bills []obligations.Bill) []Notification {
	byID := make(map[string]obligations.Bill, len(bills))
	for _, bill := range bills {
		byID[bill.ID] = bill
	}

	var notifications []Notification
	for _, event := range events {
		bill, ok := byID[event.BillID]
		if !ok {
			continue
		}
		amount := formatCents(bill.AmountCents)
		base := Notification{
			Timestamp: event.CreatedAt,
			ActionURL: obligations.ActionURLBills,
			RelatedID: bill.ID,
		}

		switch event.Kind {
		case payments.EventLimitExceeded:
			base.ID = "payment-limit-" + bill.ID
			base.Type = TypePaymentFailure
			base.Priority = PriorityHigh
			base.Title = loc.Sprintf("Auto-Pay Limit Exceeded")
			base.Message = loc.Sprintf("%s bill amount ($%s) exceeds your auto-pay limit of $%s. Please review and pay manually.",
				bill.Name, amount, formatCents(bill.AutoPayLimitCents))
		case payments.EventPaymentSuccess:
			base.ID = "payment-success-" + bill.ID
			base.Type = TypePayment
			base.Priority = PriorityLow
			base.Title = loc.Sprintf("Payment Successful")
			base.Message = loc.Sprintf("Your payment of $%s for %s was processed successfully.", amount, bill.Name)
		case payments.EventPaymentRetry:
			base.ID = fmt.Sprintf("payment-retry-%s-%d", bill.ID, event.Attempt)
			base.Type = TypePaymentFailure
			base.Priority = PriorityMedium
			base.Title = loc.Sprintf("Payment Retry Scheduled")
			base.Message = loc.Sprintf("Payment for %s failed (%s). Retry attempt %d of %d will be made shortly.",
				bill.Name, event.Reason, event.Attempt, payments.MaxRetryCount)
		case payments.EventPaymentFailed:
			base.ID = "payment-failed-" + bill.ID
			base.Type = TypePaymentFailure
			base.Priority = PriorityUrgent
			base.Title = loc.Sprintf("Payment Failed - Action Required")
			base.Message = loc.Sprintf("Automatic payment for %s ($%s) has failed after %d attempts. Reason: %s. Please update your payment method or pay manually.",
				bill.Name, amount, payments.MaxRetryCount, event.Reason)
		case payments.EventMethodMissing:
			base.ID = "payment-method-missing-" + bill.ID
			base.Type = TypePaymentFailure
			base.Priority = PriorityUrgent
			base.Title = loc.Sprintf("Payment Failed - Action Required")
			base.Message = loc.Sprintf("Automatic payment for %s ($%s) could not run. Reason: %s. Please update your payment method or pay manually.",
				bill.Name, amount, event.Reason)
		default:
			continue
		}
		notifications = append(notifications, base)
	}
	return notifications
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
