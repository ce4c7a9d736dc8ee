package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/telcox/internal/cache"
	"github.com/smallbiznis/telcox/internal/clock"
	"github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Cache cache.PlanCatalogCache
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	cache cache.PlanCatalogCache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Plan{}, domain.ErrInvalidName
	}

	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		code = slug.Make(name)
	}
	if code == "" {
		return domain.Plan{}, domain.ErrInvalidCode
	}
	if req.MonthlyPrice.IsNegative() {
		return domain.Plan{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	plan := domain.Plan{
		ID:              s.genID.Generate(),
		Code:            code,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		MonthlyPrice:    req.MonthlyPrice.Round(2),
		DataIncludedGB:  req.DataIncludedGB,
		MinutesIncluded: req.MinutesIncluded,
		SMSIncluded:     req.SMSIncluded,
		MaxSpeedMbps:    req.MaxSpeedMbps,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Plan{}, domain.ErrDuplicate
		}
		return domain.Plan{}, err
	}
	s.cache.Invalidate()

	s.log.Info("plan created", zap.String("plan_id", plan.ID.String()), zap.String("code", plan.Code))
	return plan, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePlanRequest) (domain.Plan, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Plan{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Plan{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.MonthlyPrice != nil {
		if req.MonthlyPrice.IsNegative() {
			return domain.Plan{}, domain.ErrInvalidPrice
		}
		fields["monthly_price"] = req.MonthlyPrice.Round(2)
	}
	if req.DataIncludedGB != nil {
		fields["data_included_gb"] = *req.DataIncludedGB
	}
	if req.MinutesIncluded != nil {
		fields["minutes_included"] = *req.MinutesIncluded
	}
	if req.SMSIncluded != nil {
		fields["sms_included"] = *req.SMSIncluded
	}
	if req.MaxSpeedMbps != nil {
		fields["max_speed_mbps"] = *req.MaxSpeedMbps
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}

	var updated *domain.Plan
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if len(fields) > 0 {
			fields["updated_at"] = s.clock.Now()
			if err := s.repo.Update(ctx, tx, id, fields); err != nil {
				return err
			}
		}
		updated, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Plan{}, err
	}
	if updated == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	s.cache.Invalidate()

	return *updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	planID, err := parseID(id)
	if err != nil {
		return domain.Plan{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return domain.Plan{}, err
	}
	if item == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) ResolveActiveCode(ctx context.Context, code string) (domain.Plan, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Plan{}, domain.ErrInvalidCode
	}
	if plan, ok := s.cache.GetByCode(code); ok {
		return plan, nil
	}

	item, err := s.repo.FindByCode(ctx, s.db, strings.ToLower(code))
	if err != nil {
		return domain.Plan{}, err
	}
	if item == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	if !item.Active {
		return domain.Plan{}, domain.ErrInactive
	}
	return *item, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Plan, error) {
	if plans, ok := s.cache.GetActive(); ok {
		return plans, nil
	}

	items, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		plans = append(plans, *item)
	}
	s.cache.SetActive(plans)

	return plans, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

