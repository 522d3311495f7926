package chat

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classora/classora-backend/internal/config"
)

// Limiter enforces the per-user cooldown: one completion per window.
// This is a best-effort throttle with no fairness or backlog guarantee.
type Limiter interface {
	// Allow reports whether the user may issue a completion now. A true
	// result opens a new cooldown window.
	Allow(ctx context.Context, userID string) (bool, error)
}

// ─── In-memory implementation ───────────────────────────────────────────────

// MemoryLimiter tracks the last accepted call per user under one lock.
type MemoryLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
	now      func() time.Time
}

// NewMemoryLimiter creates an in-process cooldown limiter.
func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		window:   window,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}

	// Drop stale entries so idle users don't accumulate forever.
	go func() {
		for range time.Tick(time.Minute) {
			l.cleanup()
		}
	}()

	return l
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, userID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastSeen[userID]; ok && now.Sub(last) < l.window {
		return false, nil
	}
	l.lastSeen[userID] = now
	return true, nil
}

func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for userID, last := range l.lastSeen {
		if l.now().Sub(last) > 3*l.window {
			delete(l.lastSeen, userID)
		}
	}
}

// ─── Redis implementation ───────────────────────────────────────────────────

// RedisLimiter implements the cooldown with SET NX PX, which is atomic
// across instances: the first caller in a window claims the key, everyone
// else is rejected until it expires.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed cooldown limiter.
func NewRedisLimiter(rdb *redis.Client, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, window: window}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.rdb.SetNX(ctx, config.StateKey.ChatCooldownKey(userID), 1, l.window).Result()
}
