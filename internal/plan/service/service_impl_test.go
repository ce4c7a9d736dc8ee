package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/telcox/internal/cache"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/internal/plan/repository"
	"github.com/smallbiznis/telcox/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPlanService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testutil.MustNode(t),
		Clock: clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		Cache: cache.NewPlanCatalogCache(),
	})
	return svc, db
}

func TestCreateDerivesSlugCode(t *testing.T) {
	svc, _ := setupPlanService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, domain.CreatePlanRequest{
		Name:           "Plan Básico 5GB",
		MonthlyPrice:   decimal.RequireFromString("19.999"),
		DataIncludedGB: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if plan.Code != "plan-basico-5gb" {
		t.Fatalf("unexpected code %q", plan.Code)
	}
	if !plan.MonthlyPrice.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected price rounded to cents, got %s", plan.MonthlyPrice)
	}

	if _, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "Other", Code: "Plan Basico 5GB"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate code error, got %v", err)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := setupPlanService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "  "}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "x", MonthlyPrice: decimal.NewFromInt(-1)}); !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestListActiveExcludesDeactivatedPlans(t *testing.T) {
	svc, _ := setupPlanService(t)
	ctx := context.Background()

	cheap, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "Cheap", MonthlyPrice: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("create cheap: %v", err)
	}
	premium, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "Premium", MonthlyPrice: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("create premium: %v", err)
	}

	plans, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(plans) != 2 || plans[0].ID != cheap.ID {
		t.Fatalf("expected both plans ordered by price, got %+v", plans)
	}

	inactive := false
	if _, err := svc.Update(ctx, domain.UpdatePlanRequest{ID: premium.ID.String(), Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	plans, err = svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != cheap.ID {
		t.Fatalf("expected only the active plan, got %+v", plans)
	}

	if _, err := svc.ResolveActiveCode(ctx, premium.Code); !errors.Is(err, domain.ErrInactive) {
		t.Fatalf("expected inactive plan error, got %v", err)
	}
	if got, err := svc.ResolveActiveCode(ctx, "CHEAP"); err != nil || got.ID != cheap.ID {
		t.Fatalf("expected cheap plan, got %+v %v", got, err)
	}
}

func TestUpdateAndGet(t *testing.T) {
	svc, _ := setupPlanService(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, domain.CreatePlanRequest{Name: "Family"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Family Plus"
	minutes := 500
	updated, err := svc.Update(ctx, domain.UpdatePlanRequest{ID: plan.ID.String(), Name: &name, MinutesIncluded: &minutes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.MinutesIncluded != minutes || updated.Code != "family" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.GetByID(ctx, "not-an-id"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "12345"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, domain.UpdatePlanRequest{ID: "12345", Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
