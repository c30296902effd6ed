// Package app bridges the record-level obligation store to the domain
// boundaries consumed by the services and commands built on it.
package app

import (
	"context"
	"errors"
	"time"

	notifdomain "github.com/duebook/duebook/internal/services/notifications/domain"
	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
	"github.com/duebook/duebook/internal/services/obligations/storage"
	payments "github.com/duebook/duebook/internal/services/payments/domain"
)

// StoreAdapter bridges the record-level obligation store to the domain
// boundaries of the obligation, payment, and notification services.
type StoreAdapter struct {
	store storage.Store
}

var (
	_ obligations.Store = (*StoreAdapter)(nil)
	_ payments.Store    = (*StoreAdapter)(nil)
	_ notifdomain.Facts = (*StoreAdapter)(nil)
)

func NewStoreAdapter(store storage.Store) *StoreAdapter {
	return &StoreAdapter{store: store}
}

func (a *StoreAdapter) GetBill(ctx context.Context, id string) (obligations.Bill, error) {
	if a == nil || a.store == nil {
		return obligations.Bill{}, obligations.ErrStoreNotConfigured
	}
	record, err := a.store.GetBill(ctx, id)
	if err != nil {
		return obligations.Bill{}, mapStorageError(err)
	}
	return toDomainBill(record), nil
}

func (a *StoreAdapter) PutBill(ctx context.Context, bill obligations.Bill) error {
	if a == nil || a.store == nil {
		return obligations.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.PutBill(ctx, toStorageBill(bill)))
}

func (a *StoreAdapter) ListBills(ctx context.Context) ([]obligations.Bill, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListBills(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	bills := make([]obligations.Bill, 0, len(records))
	for _, record := range records {
		bills = append(bills, toDomainBill(record))
	}
	return bills, nil
}

// DueAutoPayBillIDs lists bills eligible for an automatic payment attempt,
// due on or before the provided instant.
func (a *StoreAdapter) DueAutoPayBillIDs(ctx context.Context, dueBy time.Time) ([]string, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListAutoPayCandidates(ctx, dueBy, payments.MaxRetryCount)
	if err != nil {
		return nil, mapStorageError(err)
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return ids, nil
}

func (a *StoreAdapter) ListErrands(ctx context.Context) ([]obligations.Errand, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListErrands(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	errands := make([]obligations.Errand, 0, len(records))
	for _, record := range records {
		errands = append(errands, obligations.Errand{
			ID:            record.ID,
			Description:   record.Description,
			Priority:      obligations.Priority(record.Priority),
			Status:        obligations.ErrandStatus(record.Status),
			PreferredDate: record.PreferredDate,
			CreatedAt:     record.CreatedAt,
			UpdatedAt:     record.UpdatedAt,
		})
	}
	return errands, nil
}

func (a *StoreAdapter) ListAppointments(ctx context.Context) ([]obligations.Appointment, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListAppointments(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	appointments := make([]obligations.Appointment, 0, len(records))
	for _, record := range records {
		appointments = append(appointments, obligations.Appointment{
			ID:        record.ID,
			Title:     record.Title,
			Type:      obligations.AppointmentType(record.Type),
			StartsAt:  record.StartsAt,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		})
	}
	return appointments, nil
}

func (a *StoreAdapter) GetPaymentMethod(ctx context.Context, id string) (obligations.PaymentMethod, error) {
	if a == nil || a.store == nil {
		return obligations.PaymentMethod{}, obligations.ErrStoreNotConfigured
	}
	record, err := a.store.GetPaymentMethod(ctx, id)
	if err != nil {
		return obligations.PaymentMethod{}, mapStorageError(err)
	}
	return toDomainPaymentMethod(record), nil
}

func (a *StoreAdapter) ListPaymentMethods(ctx context.Context) ([]obligations.PaymentMethod, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListPaymentMethods(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	methods := make([]obligations.PaymentMethod, 0, len(records))
	for _, record := range records {
		methods = append(methods, toDomainPaymentMethod(record))
	}
	return methods, nil
}

func (a *StoreAdapter) ListPaymentRecords(ctx context.Context, billID string) ([]obligations.PaymentRecord, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.ListPaymentRecords(ctx, billID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	history := make([]obligations.PaymentRecord, 0, len(records))
	for _, record := range records {
		history = append(history, obligations.PaymentRecord{
			ID:              record.ID,
			BillID:          record.BillID,
			AmountCents:     record.AmountCents,
			Status:          obligations.PaymentRecordStatus(record.Status),
			PaymentMethodID: record.PaymentMethodID,
			FailureReason:   record.FailureReason,
			CreatedAt:       record.CreatedAt,
		})
	}
	return history, nil
}

func (a *StoreAdapter) LatestPaymentEvents(ctx context.Context) ([]payments.Event, error) {
	if a == nil || a.store == nil {
		return nil, obligations.ErrStoreNotConfigured
	}
	records, err := a.store.LatestPaymentEvents(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	events := make([]payments.Event, 0, len(records))
	for _, record := range records {
		events = append(events, payments.Event{
			ID:        record.ID,
			BillID:    record.BillID,
			Kind:      payments.EventKind(record.Kind),
			Attempt:   record.Attempt,
			Reason:    record.Reason,
			CreatedAt: record.CreatedAt,
		})
	}
	return events, nil
}

func (a *StoreAdapter) ApplyAttempt(ctx context.Context, bill *obligations.Bill, record *obligations.PaymentRecord, event *payments.Event) error {
	if a == nil || a.store == nil {
		return obligations.ErrStoreNotConfigured
	}

	write := storage.AttemptWrite{}
	if bill != nil {
		billRecord := toStorageBill(*bill)
		write.Bill = &billRecord
	}
	if record != nil {
		write.History = &storage.PaymentHistoryRecord{
			ID:              record.ID,
			BillID:          record.BillID,
			AmountCents:     record.AmountCents,
			Status:          string(record.Status),
			PaymentMethodID: record.PaymentMethodID,
			FailureReason:   record.FailureReason,
			CreatedAt:       record.CreatedAt,
		}
	}
	if event != nil {
		write.Event = &storage.PaymentEventRecord{
			ID:        event.ID,
			BillID:    event.BillID,
			Kind:      string(event.Kind),
			Attempt:   event.Attempt,
			Reason:    event.Reason,
			CreatedAt: event.CreatedAt,
		}
	}
	return mapStorageError(a.store.ApplyAttempt(ctx, write))
}

func toDomainBill(record storage.BillRecord) obligations.Bill {
	return obligations.Bill{
		ID:                 record.ID,
		Name:               record.Name,
		AmountCents:        record.AmountCents,
		DueDate:            record.DueDate,
		Recurrence:         obligations.Recurrence(record.Recurrence),
		Status:             obligations.BillStatus(record.Status),
		AutoPayEnabled:     record.AutoPayEnabled,
		AutoPayLimitCents:  record.AutoPayLimitCents,
		PaymentMethodID:    record.PaymentMethodID,
		RetryCount:         record.RetryCount,
		LastPaymentAttempt: record.LastPaymentAttempt,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

func toStorageBill(bill obligations.Bill) storage.BillRecord {
	return storage.BillRecord{
		ID:                 bill.ID,
		Name:               bill.Name,
		AmountCents:        bill.AmountCents,
		DueDate:            bill.DueDate,
		Recurrence:         string(bill.Recurrence),
		Status:             string(bill.Status),
		AutoPayEnabled:     bill.AutoPayEnabled,
		AutoPayLimitCents:  bill.AutoPayLimitCents,
		PaymentMethodID:    bill.PaymentMethodID,
		RetryCount:         bill.RetryCount,
		LastPaymentAttempt: bill.LastPaymentAttempt,
		CreatedAt:          bill.CreatedAt,
		UpdatedAt:          bill.UpdatedAt,
	}
}

func toDomainPaymentMethod(record storage.PaymentMethodRecord) obligations.PaymentMethod {
	return obligations.PaymentMethod{
		ID:              record.ID,
		Kind:            obligations.PaymentMethodKind(record.Kind),
		Label:           record.Label,
		CardLast4:       record.CardLast4,
		CardExpiryMonth: record.CardExpiryMonth,
		CardExpiryYear:  record.CardExpiryYear,
		CreatedAt:       record.CreatedAt,
	}
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return obligations.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return obligations.ErrConflict
	default:
		return err
	}
}
