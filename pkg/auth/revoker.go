package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenRevoker черный список токенов до их истечения
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisRevoker хранит отозванные токены в Redis с TTL
type RedisRevoker struct {
	client *redis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, blacklistKey(token), 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// MemoryRevoker для одного процесса без Redis
type MemoryRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{tokens: make(map[string]time.Time)}
}

func (r *MemoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for t, exp := range r.tokens {
		if now.After(exp) {
			delete(r.tokens, t)
		}
	}
	r.tokens[token] = now.Add(ttl)
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(r.tokens, token)
		return false, nil
	}
	return true, nil
}
