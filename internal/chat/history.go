package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/classora/classora-backend/internal/config"
	"github.com/classora/classora-backend/internal/model"
)

// HistoryStore keeps a bounded, oldest-evicted conversation log per user.
// History lives for the process (memory) or until the cache drops it
// (redis); there is no durability guarantee.
type HistoryStore interface {
	// Append adds turns to the user's history, evicting the oldest
	// entries beyond the store's cap.
	Append(ctx context.Context, userID string, msgs ...model.ChatMessage) error
	// Recent returns the retained turns, oldest first.
	Recent(ctx context.Context, userID string) ([]model.ChatMessage, error)
	// Clear drops the user's history.
	Clear(ctx context.Context, userID string) error
}

// ─── In-memory implementation ───────────────────────────────────────────────

type userHistory struct {
	mu    sync.Mutex
	turns []model.ChatMessage
}

// MemoryHistory is the single-node HistoryStore. The outer mutex guards
// the user map; each user's log has its own lock so concurrent requests
// for the same user serialize instead of racing.
type MemoryHistory struct {
	mu    sync.Mutex
	limit int
	users map[string]*userHistory
}

// NewMemoryHistory creates an in-process history store capped at limit
// turns per user.
func NewMemoryHistory(limit int) *MemoryHistory {
	return &MemoryHistory{
		limit: limit,
		users: make(map[string]*userHistory),
	}
}

func (h *MemoryHistory) user(userID string) *userHistory {
	h.mu.Lock()
	defer h.mu.Unlock()
	u, ok := h.users[userID]
	if !ok {
		u = &userHistory{}
		h.users[userID] = u
	}
	return u
}

// Append implements HistoryStore.
func (h *MemoryHistory) Append(_ context.Context, userID string, msgs ...model.ChatMessage) error {
	u := h.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	u.turns = append(u.turns, msgs...)
	if over := len(u.turns) - h.limit; over > 0 {
		u.turns = append([]model.ChatMessage(nil), u.turns[over:]...)
	}
	return nil
}

// Recent implements HistoryStore.
func (h *MemoryHistory) Recent(_ context.Context, userID string) ([]model.ChatMessage, error) {
	u := h.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]model.ChatMessage, len(u.turns))
	copy(out, u.turns)
	return out, nil
}

// Clear implements HistoryStore.
func (h *MemoryHistory) Clear(_ context.Context, userID string) error {
	u := h.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	u.turns = nil
	return nil
}

// ─── Redis implementation ───────────────────────────────────────────────────

// RedisHistory backs the bounded history with a Redis list so multiple
// instances share one view of a user's conversation. The RPUSH+LTRIM pair
// runs in a pipeline, keeping the cap enforced on every append.
type RedisHistory struct {
	rdb   *redis.Client
	limit int
}

// NewRedisHistory creates a Redis-backed history store capped at limit
// turns per user.
func NewRedisHistory(rdb *redis.Client, limit int) *RedisHistory {
	return &RedisHistory{rdb: rdb, limit: limit}
}

// Append implements HistoryStore.
func (h *RedisHistory) Append(ctx context.Context, userID string, msgs ...model.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal history turn: %w", err)
		}
		values = append(values, raw)
	}

	key := config.StateKey.ChatHistoryKey(userID)
	pipe := h.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-h.limit), -1)
	_, err := pipe.Exec(ctx)
	return err
}

// Recent implements HistoryStore.
func (h *RedisHistory) Recent(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	raw, err := h.rdb.LRange(ctx, config.StateKey.ChatHistoryKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	turns := make([]model.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			return nil, fmt.Errorf("unmarshal history turn: %w", err)
		}
		turns = append(turns, m)
	}
	return turns, nil
}

// Clear implements HistoryStore.
func (h *RedisHistory) Clear(ctx context.Context, userID string) error {
	return h.rdb.Del(ctx, config.StateKey.ChatHistoryKey(userID)).Err()
}
