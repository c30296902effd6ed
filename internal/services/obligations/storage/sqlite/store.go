// Package sqlite provides SQLite-backed persistence for obligation state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/duebook/duebook/internal/platform/storage/sqlitemigrate"
	"github.com/duebook/duebook/internal/services/obligations/storage"
	"github.com/duebook/duebook/internal/services/obligations/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for obligation state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an obligation SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutBill upserts one bill row.
func (s *Store) PutBill(ctx context.Context, record storage.BillRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeBillRecord(record)
	if err != nil {
		return err
	}
	return putBillExec(ctx, s.sqlDB, normalized)
}

// GetBill loads one bill by id.
func (s *Store) GetBill(ctx context.Context, id string) (storage.BillRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BillRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BillRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.BillRecord{}, fmt.Errorf("bill id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, amount_cents, due_date, recurrence, status, auto_pay_enabled,
       auto_pay_limit_cents, payment_method_id, retry_count, last_payment_attempt,
       created_at, updated_at
FROM bills
WHERE id = ?
`, id)
	record, err := scanBill(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BillRecord{}, storage.ErrNotFound
		}
		return storage.BillRecord{}, fmt.Errorf("get bill: %w", err)
	}
	return record, nil
}

// ListBills lists all bill rows ordered by due date.
func (s *Store) ListBills(ctx context.Context) ([]storage.BillRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, amount_cents, due_date, recurrence, status, auto_pay_enabled,
       auto_pay_limit_cents, payment_method_id, retry_count, last_payment_attempt,
       created_at, updated_at
FROM bills
ORDER BY due_date ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// ListAutoPayCandidates lists bills eligible for an automatic payment attempt:
// upcoming, auto-pay enabled with a method configured, below the terminal
// retry count, and due on or before the provided instant.
func (s *Store) ListAutoPayCandidates(ctx context.Context, dueBy time.Time, maxRetries int) ([]storage.BillRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if dueBy.IsZero() {
		return nil, fmt.Errorf("due-by instant is required")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, amount_cents, due_date, recurrence, status, auto_pay_enabled,
       auto_pay_limit_cents, payment_method_id, retry_count, last_payment_attempt,
       created_at, updated_at
FROM bills
WHERE status = 'upcoming'
  AND auto_pay_enabled = 1
  AND payment_method_id != ''
  AND retry_count < ?
  AND due_date <= ?
ORDER BY due_date ASC, id ASC
`, maxRetries, toMillis(dueBy))
	if err != nil {
		return nil, fmt.Errorf("list auto-pay candidates: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// PutErrand upserts one errand row.
func (s *Store) PutErrand(ctx context.Context, record storage.ErrandRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Description = strings.TrimSpace(record.Description)
	if record.ID == "" {
		return fmt.Errorf("errand id is required")
	}
	if record.Description == "" {
		return fmt.Errorf("errand description is required")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		return fmt.Errorf("errand timestamps are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO errands (id, description, priority, status, preferred_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	description = excluded.description,
	priority = excluded.priority,
	status = excluded.status,
	preferred_date = excluded.preferred_date,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Description,
		record.Priority,
		record.Status,
		toMillis(record.PreferredDate),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put errand: %w", err)
	}
	return nil
}

// ListErrands lists all errand rows ordered by preferred date.
func (s *Store) ListErrands(ctx context.Context) ([]storage.ErrandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, description, priority, status, preferred_date, created_at, updated_at
FROM errands
ORDER BY preferred_date ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list errands: %w", err)
	}
	defer rows.Close()

	var results []storage.ErrandRecord
	for rows.Next() {
		var record storage.ErrandRecord
		var preferredDate, createdAt, updatedAt int64
		if err := rows.Scan(&record.ID, &record.Description, &record.Priority, &record.Status, &preferredDate, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan errand row: %w", err)
		}
		record.PreferredDate = fromMillis(preferredDate)
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate errand rows: %w", err)
	}
	return results, nil
}

// PutAppointment upserts one appointment row.
func (s *Store) PutAppointment(ctx context.Context, record storage.AppointmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Title = strings.TrimSpace(record.Title)
	if record.ID == "" {
		return fmt.Errorf("appointment id is required")
	}
	if record.Title == "" {
		return fmt.Errorf("appointment title is required")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		return fmt.Errorf("appointment timestamps are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO appointments (id, title, type, starts_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	type = excluded.type,
	starts_at = excluded.starts_at,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Title,
		record.Type,
		toMillis(record.StartsAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put appointment: %w", err)
	}
	return nil
}

// ListAppointments lists all appointment rows ordered by start time.
func (s *Store) ListAppointments(ctx context.Context) ([]storage.AppointmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, title, type, starts_at, created_at, updated_at
FROM appointments
ORDER BY starts_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var results []storage.AppointmentRecord
	for rows.Next() {
		var record storage.AppointmentRecord
		var startsAt, createdAt, updatedAt int64
		if err := rows.Scan(&record.ID, &record.Title, &record.Type, &startsAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
		}
		record.StartsAt = fromMillis(startsAt)
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointment rows: %w", err)
	}
	return results, nil
}

// PutPaymentMethod upserts one payment method row.
func (s *Store) PutPaymentMethod(ctx context.Context, record storage.PaymentMethodRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.Label = strings.TrimSpace(record.Label)
	if record.ID == "" {
		return fmt.Errorf("payment method id is required")
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("payment method created_at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO payment_methods (id, kind, label, card_last4, card_expiry_month, card_expiry_year, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	kind = excluded.kind,
	label = excluded.label,
	card_last4 = excluded.card_last4,
	card_expiry_month = excluded.card_expiry_month,
	card_expiry_year = excluded.card_expiry_year
`,
		record.ID,
		record.Kind,
		record.Label,
		record.CardLast4,
		record.CardExpiryMonth,
		record.CardExpiryYear,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put payment method: %w", err)
	}
	return nil
}

// GetPaymentMethod loads one payment method by id.
func (s *Store) GetPaymentMethod(ctx context.Context, id string) (storage.PaymentMethodRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PaymentMethodRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PaymentMethodRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.PaymentMethodRecord{}, fmt.Errorf("payment method id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, kind, label, card_last4, card_expiry_month, card_expiry_year, created_at
FROM payment_methods
WHERE id = ?
`, id)
	var record storage.PaymentMethodRecord
	var createdAt int64
	if err := row.Scan(&record.ID, &record.Kind, &record.Label, &record.CardLast4, &record.CardExpiryMonth, &record.CardExpiryYear, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PaymentMethodRecord{}, storage.ErrNotFound
		}
		return storage.PaymentMethodRecord{}, fmt.Errorf("get payment method: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// ListPaymentMethods lists all payment method rows.
func (s *Store) ListPaymentMethods(ctx context.Context) ([]storage.PaymentMethodRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, kind, label, card_last4, card_expiry_month, card_expiry_year, created_at
FROM payment_methods
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var results []storage.PaymentMethodRecord
	for rows.Next() {
		var record storage.PaymentMethodRecord
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.Kind, &record.Label, &record.CardLast4, &record.CardExpiryMonth, &record.CardExpiryYear, &createdAt); err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment method rows: %w", err)
	}
	return results, nil
}

// ListPaymentRecords lists one bill's payment history oldest first.
func (s *Store) ListPaymentRecords(ctx context.Context, billID string) ([]storage.PaymentHistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	billID = strings.TrimSpace(billID)
	if billID == "" {
		return nil, fmt.Errorf("bill id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, bill_id, amount_cents, status, payment_method_id, failure_reason, created_at
FROM payment_records
WHERE bill_id = ?
ORDER BY created_at ASC, id ASC
`, billID)
	if err != nil {
		return nil, fmt.Errorf("list payment records: %w", err)
	}
	defer rows.Close()

	var results []storage.PaymentHistoryRecord
	for rows.Next() {
		record, scanErr := scanPaymentRecord(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan payment record row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment record rows: %w", err)
	}
	return results, nil
}

// LatestPaymentEvents returns the most recent automation event per bill.
func (s *Store) LatestPaymentEvents(ctx context.Context) ([]storage.PaymentEventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT e.id, e.bill_id, e.kind, e.attempt, e.reason, e.created_at
FROM payment_events e
JOIN (
    SELECT bill_id, MAX(created_at) AS latest
    FROM payment_events
    GROUP BY bill_id
) last ON last.bill_id = e.bill_id AND last.latest = e.created_at
ORDER BY e.created_at DESC, e.id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list latest payment events: %w", err)
	}
	defer rows.Close()

	var results []storage.PaymentEventRecord
	seen := map[string]bool{}
	for rows.Next() {
		var record storage.PaymentEventRecord
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.BillID, &record.Kind, &record.Attempt, &record.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan payment event row: %w", err)
		}
		// Two events inside one millisecond tie on created_at; keep the
		// newest by id order and drop the rest.
		if seen[record.BillID] {
			continue
		}
		seen[record.BillID] = true
		record.CreatedAt = fromMillis(createdAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment event rows: %w", err)
	}
	return results, nil
}

// ApplyAttempt atomically persists one payment attempt outcome: the updated
// bill plus any appended history and event rows.
func (s *Store) ApplyAttempt(ctx context.Context, write storage.AttemptWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if write.Bill == nil && write.History == nil && write.Event == nil {
		return fmt.Errorf("attempt write is empty")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attempt write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback attempt write: %v", cause, rollbackErr)
		}
		return cause
	}

	if write.Bill != nil {
		normalized, normalizeErr := normalizeBillRecord(*write.Bill)
		if normalizeErr != nil {
			return rollbackWith(normalizeErr)
		}
		if err := putBillExec(ctx, tx, normalized); err != nil {
			return rollbackWith(err)
		}
	}
	if write.History != nil {
		if err := appendPaymentRecordExec(ctx, tx, *write.History); err != nil {
			return rollbackWith(err)
		}
	}
	if write.Event != nil {
		if err := appendPaymentEventExec(ctx, tx, *write.Event); err != nil {
			return rollbackWith(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt write: %w", err)
	}
	return nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeBillRecord(record storage.BillRecord) (storage.BillRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	record.PaymentMethodID = strings.TrimSpace(record.PaymentMethodID)
	if record.ID == "" {
		return storage.BillRecord{}, fmt.Errorf("bill id is required")
	}
	if record.Name == "" {
		return storage.BillRecord{}, fmt.Errorf("bill name is required")
	}
	if record.AmountCents <= 0 {
		return storage.BillRecord{}, fmt.Errorf("bill amount must be greater than zero")
	}
	if record.RetryCount < 0 {
		return storage.BillRecord{}, fmt.Errorf("retry count must be non-negative")
	}
	if record.DueDate.IsZero() {
		return storage.BillRecord{}, fmt.Errorf("due date is required")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		return storage.BillRecord{}, fmt.Errorf("bill timestamps are required")
	}
	record.DueDate = record.DueDate.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.LastPaymentAttempt != nil {
		attempt := record.LastPaymentAttempt.UTC()
		record.LastPaymentAttempt = &attempt
	}
	return record, nil
}

func putBillExec(ctx context.Context, execer sqlExecer, record storage.BillRecord) error {
	var lastAttempt sql.NullInt64
	if record.LastPaymentAttempt != nil {
		lastAttempt = sql.NullInt64{Int64: toMillis(*record.LastPaymentAttempt), Valid: true}
	}

	_, err := execer.ExecContext(ctx, `
INSERT INTO bills (
	id, name, amount_cents, due_date, recurrence, status, auto_pay_enabled,
	auto_pay_limit_cents, payment_method_id, retry_count, last_payment_attempt,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	amount_cents = excluded.amount_cents,
	due_date = excluded.due_date,
	recurrence = excluded.recurrence,
	status = excluded.status,
	auto_pay_enabled = excluded.auto_pay_enabled,
	auto_pay_limit_cents = excluded.auto_pay_limit_cents,
	payment_method_id = excluded.payment_method_id,
	retry_count = excluded.retry_count,
	last_payment_attempt = excluded.last_payment_attempt,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Name,
		record.AmountCents,
		toMillis(record.DueDate),
		record.Recurrence,
		record.Status,
		boolToInt(record.AutoPayEnabled),
		record.AutoPayLimitCents,
		record.PaymentMethodID,
		record.RetryCount,
		lastAttempt,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put bill: %w", err)
	}
	return nil
}

func appendPaymentRecordExec(ctx context.Context, execer sqlExecer, record storage.PaymentHistoryRecord) error {
	record.ID = strings.TrimSpace(record.ID)
	record.BillID = strings.TrimSpace(record.BillID)
	if record.ID == "" {
		return fmt.Errorf("payment record id is required")
	}
	if record.BillID == "" {
		return fmt.Errorf("payment record bill id is required")
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("payment record created_at is required")
	}

	_, err := execer.ExecContext(ctx, `
INSERT INTO payment_records (id, bill_id, amount_cents, status, payment_method_id, failure_reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.BillID,
		record.AmountCents,
		record.Status,
		record.PaymentMethodID,
		record.FailureReason,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append payment record: %w", err)
	}
	return nil
}

func appendPaymentEventExec(ctx context.Context, execer sqlExecer, record storage.PaymentEventRecord) error {
	record.ID = strings.TrimSpace(record.ID)
	record.BillID = strings.TrimSpace(record.BillID)
	if record.ID == "" {
		return fmt.Errorf("payment event id is required")
	}
	if record.BillID == "" {
		return fmt.Errorf("payment event bill id is required")
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("payment event created_at is required")
	}

	_, err := execer.ExecContext(ctx, `
INSERT INTO payment_events (id, bill_id, kind, attempt, reason, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.BillID,
		record.Kind,
		record.Attempt,
		record.Reason,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append payment event: %w", err)
	}
	return nil
}

func scanBill(scan scanner) (storage.BillRecord, error) {
	var record storage.BillRecord
	var dueDate, createdAt, updatedAt int64
	var autoPayEnabled int
	var lastAttempt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.Name,
		&record.AmountCents,
		&dueDate,
		&record.Recurrence,
		&record.Status,
		&autoPayEnabled,
		&record.AutoPayLimitCents,
		&record.PaymentMethodID,
		&record.RetryCount,
		&lastAttempt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.BillRecord{}, err
	}
	record.DueDate = fromMillis(dueDate)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	record.AutoPayEnabled = autoPayEnabled != 0
	if lastAttempt.Valid {
		value := fromMillis(lastAttempt.Int64)
		record.LastPaymentAttempt = &value
	}
	return record, nil
}

func scanPaymentRecord(scan scanner) (storage.PaymentHistoryRecord, error) {
	var record storage.PaymentHistoryRecord
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.BillID,
		&record.AmountCents,
		&record.Status,
		&record.PaymentMethodID,
		&record.FailureReason,
		&createdAt,
	); err != nil {
		return storage.PaymentHistoryRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func collectBills(rows *sql.Rows) ([]storage.BillRecord, error) {
	var results []storage.BillRecord
	for rows.Next() {
		record, err := scanBill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan bill row: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill rows: %w", err)
	}
	return results, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
