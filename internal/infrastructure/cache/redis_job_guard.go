package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/missionpuck/logprinter/internal/domain/printing"
)

const defaultGuardKey = "logprinter:job:active"

// releaseScript deletes the key only while it still names the caller, so a
// worker whose claim expired cannot free a newer holder's claim.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript renews the expiry only while the key still names the caller
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisJobGuard implements JobGuard using a Redis key.
// This is suitable when several processes share one printer and must not
// run jobs concurrently.
type RedisJobGuard struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// Key is the lock key (default: logprinter:job:active)
	Key string
}

// NewRedisJobGuard creates a new Redis-based job guard
func NewRedisJobGuard(cfg RedisConfig) (*RedisJobGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisJobGuardWithClient(client, cfg.Key), nil
}

// NewRedisJobGuardWithClient creates a guard with an existing Redis client
func NewRedisJobGuardWithClient(client *redis.Client, key string) *RedisJobGuard {
	if key == "" {
		key = defaultGuardKey
	}
	return &RedisJobGuard{
		client: client,
		key:    key,
	}
}

// Acquire uses SETNX so that exactly one process wins the key
func (g *RedisJobGuard) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire job guard: %w", err)
	}
	return ok, nil
}

// Extend renews the key's expiry if holder still owns it
func (g *RedisJobGuard) Extend(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, g.client, []string{g.key}, holder, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to extend job guard: %w", err)
	}
	return n == 1, nil
}

// Release deletes the key if holder still owns it
func (g *RedisJobGuard) Release(ctx context.Context, holder string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.key}, holder).Err(); err != nil {
		return fmt.Errorf("failed to release job guard: %w", err)
	}
	return nil
}

// Holder returns the job id stored under the key
func (g *RedisJobGuard) Holder(ctx context.Context) (string, error) {
	holder, err := g.client.Get(ctx, g.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job guard: %w", err)
	}
	return holder, nil
}

// Close closes the Redis client
func (g *RedisJobGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisJobGuard implements JobGuard
var _ printing.JobGuard = (*RedisJobGuard)(nil)
