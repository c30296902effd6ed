// Package app wires the automation runtime: storage, the payment engine,
// the polling loop, and the health endpoint.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/duebook/duebook/internal/platform/id"
	oblapp "github.com/duebook/duebook/internal/services/obligations/app"
	obligationsqlite "github.com/duebook/duebook/internal/services/obligations/storage/sqlite"
	"github.com/duebook/duebook/internal/services/payments/domain"
	"github.com/duebook/duebook/internal/services/payments/gateway"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls automation startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port         int
	DBPath       string
	PollInterval time.Duration
}

const (
	defaultAutomationPort = 8092
	defaultAutomationDB   = "data/obligations.db"
	defaultPollInterval   = time.Minute
)

// Run starts automation runtime dependencies and the background payment loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultAutomationPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultAutomationDB
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create automation storage dir: %w", err)
		}
	}

	store, err := obligationsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open obligations sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close obligations sqlite store: %v", closeErr)
		}
	}()

	adapter := oblapp.NewStoreAdapter(store)
	engine := domain.NewEngine(adapter, gateway.NewSimulator(nil), time.Now, id.NewID)
	sweeper := newSweeper(engine, adapter, cfg.PollInterval, log.Printf)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on automation port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("automation.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("automation server listening at %v", listener.Addr())
	return sweeper.Run(ctx)
}

// attempter runs one automatic payment attempt for a bill.
type attempter interface {
	AttemptAutomaticPayment(ctx context.Context, billID string) (domain.Attempt, error)
}

// candidateSource lists bills eligible for an automatic payment attempt.
type candidateSource interface {
	DueAutoPayBillIDs(ctx context.Context, dueBy time.Time) ([]string, error)
}

// sweeper drives the automation poll loop: each pass lists due auto-pay
// bills and runs one attempt per bill.
type sweeper struct {
	engine     attempter
	candidates candidateSource
	interval   time.Duration
	clock      func() time.Time
	logf       func(format string, args ...any)
}

func newSweeper(engine attempter, candidates candidateSource, interval time.Duration, logf func(format string, args ...any)) *sweeper {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &sweeper{
		engine:     engine,
		candidates: candidates,
		interval:   interval,
		clock:      time.Now,
		logf:       logf,
	}
}

// Run sweeps immediately, then on every tick until the context ends.
func (s *sweeper) Run(ctx context.Context) error {
	if s == nil || s.engine == nil || s.candidates == nil {
		return fmt.Errorf("sweeper is not configured")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logf("automation sweep: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// sweep runs one pass. A failed attempt for one bill does not stop the
// others.
func (s *sweeper) sweep(ctx context.Context) error {
	ids, err := s.candidates.DueAutoPayBillIDs(ctx, s.clock().UTC())
	if err != nil {
		return fmt.Errorf("list due auto-pay bills: %w", err)
	}

	for _, billID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempt, err := s.engine.AttemptAutomaticPayment(ctx, billID)
		if err != nil {
			s.logf("attempt payment for bill %s: %v", billID, err)
			continue
		}
		s.logf("bill %s: %s", billID, attempt.Outcome)
	}
	return nil
}
