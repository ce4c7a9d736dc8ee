package kvstore

import (
	"testing"

	"github.com/smallbiznis/telcox/internal/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewRedisClientDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	client, err := NewRedisClient(lc, config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client when redis is disabled")
	}
}

func TestNewRedisClientRequiresAddr(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{Redis: config.RedisConfig{Enabled: true, Addr: "  "}}
	if _, err := NewRedisClient(lc, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
