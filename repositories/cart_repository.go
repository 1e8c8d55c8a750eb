package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/models"
)

// ErrCorruptCart means a stored snapshot exists but cannot be decoded.
var ErrCorruptCart = errors.New("cart snapshot unreadable")

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// RedisCartRepository stores each session's cart as one JSON blob. Every
// save overwrites the whole blob and refreshes its TTL.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) Load(ctx context.Context, sessionID string) (*models.CartSnapshot, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeCart(data)
}

func (r *RedisCartRepository) Save(ctx context.Context, sessionID string, snapshot models.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err()
}

func (r *RedisCartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKey(sessionID)).Err()
}

// MemoryCartRepository keeps encoded snapshots in process memory. It is the
// fallback when Redis is not reachable; carts then do not survive restarts.
type MemoryCartRepository struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{blobs: make(map[string][]byte)}
}

func (r *MemoryCartRepository) Load(ctx context.Context, sessionID string) (*models.CartSnapshot, error) {
	r.mu.Lock()
	data, ok := r.blobs[cartKey(sessionID)]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeCart(data)
}

func (r *MemoryCartRepository) Save(ctx context.Context, sessionID string, snapshot models.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	r.mu.Lock()
	r.blobs[cartKey(sessionID)] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryCartRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.blobs, cartKey(sessionID))
	r.mu.Unlock()
	return nil
}

func decodeCart(data []byte) (*models.CartSnapshot, error) {
	var snap models.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCart, err)
	}
	return &snap, nil
}
