package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/config"
)

// JobGuardFactory creates job guards based on configuration
type JobGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// JobGuardFactoryOption is a functional option for configuring the factory
type JobGuardFactoryOption func(*JobGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) JobGuardFactoryOption {
	return func(f *JobGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory guard
// when Redis is unavailable. Default is false: a shared printer must not be
// driven by two processes that each believe they hold the guard.
func WithInMemoryFallback(allow bool) JobGuardFactoryOption {
	return func(f *JobGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewJobGuardFactory creates a new factory
func NewJobGuardFactory(cfg config.RedisConfig, opts ...JobGuardFactoryOption) *JobGuardFactory {
	f := &JobGuardFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisGuard creates a Redis-based job guard
func (f *JobGuardFactory) CreateRedisGuard() (printing.JobGuard, error) {
	guard, err := NewRedisJobGuard(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
		Key:      f.redisConfig.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis job guard: %w", err)
	}

	return guard, nil
}

// CreateInMemoryGuard creates a process-local job guard
func (f *JobGuardFactory) CreateInMemoryGuard() printing.JobGuard {
	return NewInMemoryJobGuard()
}

// CreateGuard returns the Redis guard when Redis is enabled, else the
// in-memory guard
func (f *JobGuardFactory) CreateGuard() (printing.JobGuard, error) {
	if !f.redisConfig.Enabled {
		return f.CreateInMemoryGuard(), nil
	}

	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis job guard", zap.String("key", f.redisConfig.Key))
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for job guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory job guard. "+
		"Other processes sharing the printer will not see this job.",
		zap.Error(err),
	)
	return f.CreateInMemoryGuard(), nil
}
