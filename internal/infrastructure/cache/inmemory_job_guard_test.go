package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionpuck/logprinter/internal/infrastructure/config"
)

func TestInMemoryJobGuard_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("first holder wins", func(t *testing.T) {
		guard := NewInMemoryJobGuard()
		defer guard.Close()

		ok, err := guard.Acquire(ctx, "job-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Acquire(ctx, "job-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "second holder must be rejected while the first is live")

		holder, err := guard.Holder(ctx)
		require.NoError(t, err)
		assert.Equal(t, "job-1", holder)
	})

	t.Run("release frees the slot", func(t *testing.T) {
		guard := NewInMemoryJobGuard()

		ok, err := guard.Acquire(ctx, "job-1", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, guard.Release(ctx, "job-1"))

		ok, err = guard.Acquire(ctx, "job-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release by another holder is ignored", func(t *testing.T) {
		guard := NewInMemoryJobGuard()

		ok, err := guard.Acquire(ctx, "job-1", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, guard.Release(ctx, "job-2"))

		holder, err := guard.Holder(ctx)
		require.NoError(t, err)
		assert.Equal(t, "job-1", holder)
	})

	t.Run("expired claim can be taken over", func(t *testing.T) {
		guard := NewInMemoryJobGuard()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		guard.now = func() time.Time { return now }

		ok, err := guard.Acquire(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)

		holder, err := guard.Holder(ctx)
		require.NoError(t, err)
		assert.Empty(t, holder)

		ok, err = guard.Acquire(ctx, "job-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		guard := NewInMemoryJobGuard()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		ok, err := guard.Acquire(cctx, "job-1", time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestInMemoryJobGuard_Extend(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	newGuard := func() *InMemoryJobGuard {
		g := NewInMemoryJobGuard()
		g.now = func() time.Time { return now }
		return g
	}

	t.Run("renewed claim outlives the original ttl", func(t *testing.T) {
		guard := newGuard()
		ok, err := guard.Acquire(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(50 * time.Second)
		held, err := guard.Extend(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, held)

		now = now.Add(50 * time.Second)
		ok, err = guard.Acquire(ctx, "job-2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "job-1 renewed its claim")
	})

	t.Run("another holder cannot extend", func(t *testing.T) {
		guard := newGuard()
		ok, err := guard.Acquire(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		held, err := guard.Extend(ctx, "job-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, held)
	})

	t.Run("expired claim is not revived", func(t *testing.T) {
		guard := newGuard()
		ok, err := guard.Acquire(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)
		held, err := guard.Extend(ctx, "job-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, held)
	})
}

func TestInMemoryJobGuard_ConcurrentAcquire(t *testing.T) {
	guard := NewInMemoryJobGuard()
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := guard.Acquire(ctx, "job-"+string(rune('a'+i%26)), time.Hour)
			if err == nil && ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestNewRedisJobGuard_Unreachable(t *testing.T) {
	_, err := NewRedisJobGuard(RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestNewRedisJobGuardWithClient_DefaultKey(t *testing.T) {
	guard := NewRedisJobGuardWithClient(nil, "")
	assert.Equal(t, defaultGuardKey, guard.key)

	guard = NewRedisJobGuardWithClient(nil, "custom")
	assert.Equal(t, "custom", guard.key)
}

func TestJobGuardFactory_CreateGuard(t *testing.T) {
	t.Run("redis disabled gives in-memory guard", func(t *testing.T) {
		f := NewJobGuardFactory(config.RedisConfig{})
		guard, err := f.CreateGuard()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryJobGuard{}, guard)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewJobGuardFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1})
		_, err := f.CreateGuard()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required for job guard")
	})

	t.Run("unreachable redis with fallback degrades", func(t *testing.T) {
		f := NewJobGuardFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
			WithInMemoryFallback(true))
		guard, err := f.CreateGuard()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryJobGuard{}, guard)
	})
}
