package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/duebook/duebook/internal/services/payments/domain"
)

type fakeAttempter struct {
	attempts []string
	err      error
}

func (f *fakeAttempter) AttemptAutomaticPayment(_ context.Context, billID string) (domain.Attempt, error) {
	f.attempts = append(f.attempts, billID)
	if f.err != nil {
		return domain.Attempt{}, f.err
	}
	return domain.Attempt{Outcome: domain.OutcomePaid}, nil
}

type fakeCandidates struct {
	ids []string
	err error
}

func (f *fakeCandidates) DueAutoPayBillIDs(context.Context, time.Time) ([]string, error) {
	return f.ids, f.err
}

func TestSweepAttemptsEachCandidate(t *testing.T) {
	t.Parallel()

	engine := &fakeAttempter{}
	candidates := &fakeCandidates{ids: []string{"bill-1", "bill-2", "bill-3"}}
	sweeper := newSweeper(engine, candidates, time.Minute, nil)

	if err := sweeper.sweep(context.Background()); err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if len(engine.attempts) != 3 {
		t.Fatalf("attempted %d bills, want 3", len(engine.attempts))
	}
	if engine.attempts[0] != "bill-1" || engine.attempts[2] != "bill-3" {
		t.Fatalf("unexpected attempt order %v", engine.attempts)
	}
}

func TestSweepContinuesPastAttemptErrors(t *testing.T) {
	t.Parallel()

	engine := &fakeAttempter{err: errors.New("store closed")}
	candidates := &fakeCandidates{ids: []string{"bill-1", "bill-2"}}
	var logged []string
	sweeper := newSweeper(engine, candidates, time.Minute, func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	if err := sweeper.sweep(context.Background()); err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if len(engine.attempts) != 2 {
		t.Fatalf("attempted %d bills, want 2", len(engine.attempts))
	}
	if len(logged) != 2 {
		t.Fatalf("logged %d lines, want 2", len(logged))
	}
}

func TestSweepPropagatesCandidateError(t *testing.T) {
	t.Parallel()

	sweeper := newSweeper(&fakeAttempter{}, &fakeCandidates{err: errors.New("db closed")}, time.Minute, nil)
	if err := sweeper.sweep(context.Background()); err == nil {
		t.Fatal("expected error from candidate source")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	engine := &fakeAttempter{}
	sweeper := newSweeper(engine, &fakeCandidates{ids: []string{"bill-1"}}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sweeper.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	if len(engine.attempts) == 0 {
		t.Fatal("expected at least one sweep before shutdown")
	}
}

func TestNewSweeperRequiresDependencies(t *testing.T) {
	t.Parallel()

	sweeper := newSweeper(nil, nil, 0, nil)
	if err := sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured sweeper")
	}
}
