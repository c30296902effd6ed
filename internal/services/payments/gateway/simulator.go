// Package gateway provides charge execution backends for the payment engine.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/duebook/duebook/internal/services/payments/domain"
)

// successRate is the fraction of simulated charges that are approved.
const successRate = 0.8

// failureReasons is the fixed set of simulated decline reasons.
var failureReasons = []string{
	"Insufficient funds",
	"Card declined",
	"Payment gateway timeout",
	"Invalid card details",
	"Bank authorization failed",
}

// Simulator approves roughly 80% of charges and declines the rest with a
// reason drawn from a fixed set. It stands in for a real payment processor.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator constructs a charge simulator. A nil rng falls back to a
// time-seeded source.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rng: rng}
}

// Charge simulates one payment attempt.
func (s *Simulator) Charge(ctx context.Context, request domain.ChargeRequest) (domain.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChargeResult{}, err
	}
	if strings.TrimSpace(request.BillID) == "" {
		return domain.ChargeResult{}, fmt.Errorf("bill id is required")
	}
	if request.AmountCents <= 0 {
		return domain.ChargeResult{}, fmt.Errorf("charge amount must be greater than zero")
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	reasonIndex := s.rng.Intn(len(failureReasons))
	s.mu.Unlock()

	if roll < successRate {
		return domain.ChargeResult{Approved: true}, nil
	}
	return domain.ChargeResult{Approved: false, FailureReason: failureReasons[reasonIndex]}, nil
}
