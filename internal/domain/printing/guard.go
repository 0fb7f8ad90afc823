package printing

import (
	"context"
	"time"
)

// JobGuard enforces that at most one print job runs at a time.
// Implementations may be process-local or shared between processes that
// drive the same printer.
type JobGuard interface {
	// Acquire claims the guard for holder until Release or until ttl elapses.
	// Returns false without error when another holder owns it.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Extend pushes the expiry of holder's claim to ttl from now. Returns
	// false without error when holder no longer owns the guard.
	Extend(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Release gives the guard up. Releasing a guard held by someone else
	// is a no-op.
	Release(ctx context.Context, holder string) error

	// Holder returns the current holder, or "" when the guard is free
	Holder(ctx context.Context) (string, error)

	// Close releases resources held by the guard
	Close() error
}

// DefaultGuardTTL bounds how long a crashed worker can block the printer
const DefaultGuardTTL = 30 * time.Minute
