package cache

import (
	"context"
	"sync"
	"time"

	"github.com/missionpuck/logprinter/internal/domain/printing"
)

// InMemoryJobGuard implements JobGuard with a mutex-protected slot.
// This is suitable for a single process driving its own printer.
type InMemoryJobGuard struct {
	mu        sync.Mutex
	holder    string
	expiresAt time.Time
	now       func() time.Time
}

// NewInMemoryJobGuard creates a new in-memory job guard
func NewInMemoryJobGuard() *InMemoryJobGuard {
	return &InMemoryJobGuard{now: time.Now}
}

// Acquire claims the slot if it is free or its previous claim expired.
// A zero ttl never expires.
func (g *InMemoryJobGuard) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.heldLocked() {
		return false, nil
	}

	g.holder = holder
	g.expiresAt = time.Time{}
	if ttl > 0 {
		g.expiresAt = g.now().Add(ttl)
	}
	return true, nil
}

// Extend renews holder's claim. A zero ttl makes it permanent.
func (g *InMemoryJobGuard) Extend(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.heldLocked() || g.holder != holder {
		return false, nil
	}
	g.expiresAt = time.Time{}
	if ttl > 0 {
		g.expiresAt = g.now().Add(ttl)
	}
	return true, nil
}

// Release frees the slot if holder owns it
func (g *InMemoryJobGuard) Release(ctx context.Context, holder string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holder == holder {
		g.holder = ""
		g.expiresAt = time.Time{}
	}
	return nil
}

// Holder returns the live holder, if any
func (g *InMemoryJobGuard) Holder(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.heldLocked() {
		return "", nil
	}
	return g.holder, nil
}

// Close is a no-op
func (g *InMemoryJobGuard) Close() error {
	return nil
}

func (g *InMemoryJobGuard) heldLocked() bool {
	if g.holder == "" {
		return false
	}
	return g.expiresAt.IsZero() || g.now().Before(g.expiresAt)
}

// Ensure InMemoryJobGuard implements JobGuard
var _ printing.JobGuard = (*InMemoryJobGuard)(nil)
