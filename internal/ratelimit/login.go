package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/telcox/internal/config"
)

const keyLoginClient = "auth:login:client:%s"

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewLoginLimiter returns nil when rate limiting is disabled.
func NewLoginLimiter(cfg config.Config, client *redis.Client) (*LoginLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, errors.New("login rate limit requires redis")
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}
	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.LoginRate,
		burst:  limitCfg.LoginBurst,
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one token for clientKey. A disabled limiter always allows.
func (l *LoginLimiter) Allow(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, loginKey(clientKey), l.rate, l.burst)
}

func loginKey(clientKey string) string {
	clientKey = strings.ToLower(strings.TrimSpace(clientKey))
	if clientKey == "" {
		clientKey = "unknown"
	}
	return fmt.Sprintf(keyLoginClient, clientKey)
}
