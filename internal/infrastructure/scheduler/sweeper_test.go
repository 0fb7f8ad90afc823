package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakeCleaner) CleanupOlderThan(_ context.Context, age time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, age)
	return 1, f.err
}

func (f *fakeCleaner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCleaner) first() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[0]
}

func TestSweeper_RunsImmediatelyAndPeriodically(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewSweeper(SweeperConfig{Interval: 20 * time.Millisecond, OlderThan: time.Hour}, cleaner, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	assert.Eventually(t, func() bool { return cleaner.count() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	stopped := cleaner.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, cleaner.count(), "no sweeps after stop")
	assert.Equal(t, time.Hour, cleaner.first())
}

func TestSweeper_Disabled(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewSweeper(SweeperConfig{}, cleaner, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, cleaner.count())
}

func TestSweeper_ErrorsDoNotStopTheLoop(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("permission denied")}
	s := NewSweeper(SweeperConfig{Interval: 10 * time.Millisecond}, cleaner, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return cleaner.count() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, DefaultSweeperConfig().OlderThan, cleaner.first())
}
