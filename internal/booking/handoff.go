package booking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// handoffKey is the transient slot carrying the in-flight draft between the
// booking view and the payment view.
const handoffKey = "booking.handoff"

// handoffTTL bounds how long an unconfirmed draft survives in the slot.  An
// abandoned payment page should not resurrect a stale draft a day later.
const handoffTTL = 30 * time.Minute

// HandoffSlot is a one-shot staging area for a submitted draft.  Take
// removes the draft; a second Take returns nil.
type HandoffSlot interface {
	Put(ctx context.Context, d Draft) error
	Take(ctx context.Context) (*Draft, error)
}

// RedisHandoff stores the slot in Redis with a TTL, using GETDEL for the
// one-shot read.
type RedisHandoff struct {
	rdb *redis.Client
}

// NewRedisHandoff wraps an existing Redis client.
func NewRedisHandoff(rdb *redis.Client) *RedisHandoff { return &RedisHandoff{rdb: rdb} }

func (s *RedisHandoff) Put(ctx context.Context, d Draft) error {
	bs, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, handoffKey, bs, handoffTTL).Err()
}

func (s *RedisHandoff) Take(ctx context.Context) (*Draft, error) {
	bs, err := s.rdb.GetDel(ctx, handoffKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MemoryHandoff is the in-process fallback slot.
type MemoryHandoff struct {
	mu sync.Mutex
	d  *Draft
}

// NewMemoryHandoff returns an empty slot.
func NewMemoryHandoff() *MemoryHandoff { return &MemoryHandoff{} }

func (s *MemoryHandoff) Put(_ context.Context, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = &d
	return nil
}

func (s *MemoryHandoff) Take(context.Context) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.d
	s.d = nil
	return d, nil
}
