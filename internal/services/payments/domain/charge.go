package domain

import "context"

// ChargeRequest describes one payment attempt to execute.
type ChargeRequest struct {
	BillID          string
	AmountCents     int64
	PaymentMethodID string
}

// ChargeResult is the outcome of one executed payment attempt. FailureReason
// is set only when Approved is false.
type ChargeResult struct {
	Approved      bool
	FailureReason string
}

// Charger executes one payment attempt against a payment processor. Declines
// are expressed through ChargeResult; the error return is reserved for
// infrastructure failures where no outcome was obtained.
type Charger interface {
	Charge(ctx context.Context, request ChargeRequest) (ChargeResult, error)
}
