package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dealportal/backend-go/internal/config"
)

// RateStore counts hits per key inside a fixed window. Only client
// addresses are stored here.
type RateStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Backend() string
}

type RedisRateStore struct {
	client *redis.Client
}

type MemoryRateStore struct {
	mu          sync.Mutex
	items       map[string]*rateWindow
	lastCleanup time.Time
}

type rateWindow struct {
	count int64
	reset time.Time
}

// NewRateStore uses Redis when REDIS_URL is set and reachable, so counters
// are shared between instances. Otherwise counts stay in memory.
func NewRateStore(cfg config.Config) RateStore {
	if cfg.RedisURL == "" {
		return NewMemoryRateStore()
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return NewMemoryRateStore()
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemoryRateStore()
	}
	return &RedisRateStore{client: client}
}

func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{items: make(map[string]*rateWindow)}
}

// Incr creates the counter with its TTL and increments it in one MULTI, so a
// key can never exist without an expiry.
func (r *RedisRateStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetArgs(ctx, key, 0, redis.SetArgs{Mode: "NX", TTL: window})
		incr = pipe.Incr(ctx, key)
		return nil
	})
	// SET NX on an existing key answers nil, which is not a failure here.
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return incr.Result()
}

func (r *RedisRateStore) Backend() string {
	return "redis"
}

func (m *MemoryRateStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if m.lastCleanup.IsZero() || now.Sub(m.lastCleanup) > window {
		for k, w := range m.items {
			if now.After(w.reset) {
				delete(m.items, k)
			}
		}
		m.lastCleanup = now
	}
	w, ok := m.items[key]
	if !ok || now.After(w.reset) {
		w = &rateWindow{reset: now.Add(window)}
		m.items[key] = w
	}
	w.count++
	return w.count, nil
}

func (m *MemoryRateStore) Backend() string {
	return "memory"
}
