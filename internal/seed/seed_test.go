package seed

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/telcox/internal/testutil"
)

func TestEnsureDefaultPlansIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	node := testutil.MustNode(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := EnsureDefaultPlans(context.Background(), db, node, now)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != len(defaultPlans) {
		t.Fatalf("expected %d plans, got %d", len(defaultPlans), created)
	}

	created, err = EnsureDefaultPlans(context.Background(), db, node, now)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no new plans, got %d", created)
	}

	var count int64
	if err := db.Table("plans").Where("active = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(defaultPlans)) {
		t.Fatalf("expected %d active plans, got %d", len(defaultPlans), count)
	}
}
