// Package scheduler runs periodic housekeeping next to the HTTP server.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cleaner removes workspaces older than a given age
type Cleaner interface {
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// SweeperConfig holds configuration for the scratch sweeper
type SweeperConfig struct {
	// Interval between sweeps; zero disables the sweeper
	Interval time.Duration
	// OlderThan is the minimum age of a workspace before it is removed
	OlderThan time.Duration
}

// DefaultSweeperConfig sweeps hourly for workspaces older than a day
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:  time.Hour,
		OlderThan: 24 * time.Hour,
	}
}

// Sweeper periodically removes job workspaces left by crashed processes
type Sweeper struct {
	config  SweeperConfig
	cleaner Cleaner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a new sweeper
func NewSweeper(config SweeperConfig, cleaner Cleaner, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.OlderThan <= 0 {
		config.OlderThan = DefaultSweeperConfig().OlderThan
	}
	return &Sweeper{
		config:  config,
		cleaner: cleaner,
		logger:  logger,
	}
}

// Start sweeps once immediately, then every Interval until Stop
func (s *Sweeper) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.logger.Info("Scratch sweeper disabled")
		return nil
	}

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

	s.logger.Info("Scratch sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("older_than", s.config.OlderThan),
	)
	return nil
}

// Stop stops the sweeper and waits for an in-flight sweep
func (s *Sweeper) Stop(ctx context.Context) error {
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
		s.logger.Info("Scratch sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.cleaner.CleanupOlderThan(ctx, s.config.OlderThan)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("Scratch sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.logger.Info("Removed orphaned workspaces", zap.Int("count", n))
	}
}
