package booking

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// historyKey is the fixed collection name the booking history is persisted
// under in the local key-value store.
const historyKey = "booking.history"

// HistoryStore is the locally persisted, most-recent-first list of
// confirmed bookings.  It is append-only except for whole-list
// replacement, and explicitly non-authoritative: nothing reconciles it
// across devices.
type HistoryStore interface {
	Prepend(ctx context.Context, b Booking) error
	List(ctx context.Context) ([]Booking, error)
	Replace(ctx context.Context, all []Booking) error
}

// RedisHistory persists the history in Redis as a list of JSON entries,
// head = most recent.
type RedisHistory struct {
	rdb *redis.Client
}

// NewRedisHistory wraps an existing Redis client.
func NewRedisHistory(rdb *redis.Client) *RedisHistory { return &RedisHistory{rdb: rdb} }

func (h *RedisHistory) Prepend(ctx context.Context, b Booking) error {
	bs, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return h.rdb.LPush(ctx, historyKey, bs).Err()
}

func (h *RedisHistory) List(ctx context.Context) ([]Booking, error) {
	rows, err := h.rdb.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Booking, 0, len(rows))
	for _, r := range rows {
		var b Booking
		if err := json.Unmarshal([]byte(r), &b); err != nil {
			// A corrupt entry is skipped rather than poisoning the whole
			// listing.
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (h *RedisHistory) Replace(ctx context.Context, all []Booking) error {
	pipe := h.rdb.TxPipeline()
	pipe.Del(ctx, historyKey)
	for _, b := range all {
		bs, err := json.Marshal(b)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, historyKey, bs)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// MemoryHistory is the in-process fallback used when Redis is unreachable
// and in tests.  Contents do not survive a restart.
type MemoryHistory struct {
	mu   sync.Mutex
	list []Booking
}

// NewMemoryHistory returns an empty in-memory history.
func NewMemoryHistory() *MemoryHistory { return &MemoryHistory{} }

func (h *MemoryHistory) Prepend(_ context.Context, b Booking) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.list = append([]Booking{b}, h.list...)
	return nil
}

func (h *MemoryHistory) List(context.Context) ([]Booking, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Booking, len(h.list))
	copy(out, h.list)
	return out, nil
}

func (h *MemoryHistory) Replace(_ context.Context, all []Booking) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.list = make([]Booking, len(all))
	copy(h.list, all)
	return nil
}
