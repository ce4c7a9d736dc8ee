package token

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/telcox/internal/cache"
)

const blacklistPrefix = "token:blacklist:jti:"

// Blacklist records revoked token ids until their natural expiry.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewBlacklist uses redis when a client is configured and an in-process
// cache otherwise. The in-process variant is not shared between replicas.
func NewBlacklist(client *redis.Client) Blacklist {
	if client == nil {
		return &memoryBlacklist{entries: cache.NewTTLCache[struct{}]()}
	}
	return &redisBlacklist{client: client}
}

type redisBlacklist struct {
	client *redis.Client
}

func (b *redisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}
	return n > 0, nil
}

type memoryBlacklist struct {
	entries cache.Cache[struct{}]
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.entries.Set(blacklistPrefix+jti, struct{}{}, ttl)
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := b.entries.Get(blacklistPrefix + jti)
	return ok, nil
}
