package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidInterval is returned when a sweep is configured without a
// positive interval
var ErrInvalidInterval = errors.New("sweep interval must be positive")

// Reconciler recomputes derived ledger state for every farmer
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// SweepConfig holds configuration for the reconciliation sweep
type SweepConfig struct {
	// Interval between sweeps
	Interval time.Duration
	// Timeout bounds a single sweep
	Timeout time.Duration
	// RunOnStart sweeps once as soon as Start is called
	RunOnStart bool
}

// DefaultSweepConfig returns the default sweep configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:   time.Hour,
		Timeout:    5 * time.Minute,
		RunOnStart: true,
	}
}

// Sweep periodically reconciles budgets so that a spent amount left stale
// by a failed post-commit hook is repaired even when no one reads it
type Sweep struct {
	config     SweepConfig
	reconciler Reconciler
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
}

// NewSweep creates a new reconciliation sweep
func NewSweep(config SweepConfig, reconciler Reconciler, logger *zap.Logger) (*Sweep, error) {
	if config.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweep{
		config:     config,
		reconciler: reconciler,
		logger:     logger,
	}, nil
}

// Start starts the sweep loop
func (s *Sweep) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Budget reconciliation sweep started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("timeout", s.config.Timeout),
	)
	return nil
}

// Stop stops the sweep and waits for a running pass to finish
func (s *Sweep) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Budget reconciliation sweep stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastRun returns when the last completed pass started
func (s *Sweep) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Sweep) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reconciliation pass
func (s *Sweep) RunOnce(ctx context.Context) {
	started := time.Now()
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	visited, err := s.reconciler.ReconcileAll(passCtx)
	if err != nil {
		s.logger.Error("Budget reconciliation sweep failed",
			zap.Int("budgets", visited),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.lastRun = started
	s.mu.Unlock()
	s.logger.Debug("Budget reconciliation sweep completed",
		zap.Int("budgets", visited),
		zap.Duration("duration", time.Since(started)),
	)
}
