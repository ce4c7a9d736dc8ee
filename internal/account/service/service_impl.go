package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/telcox/internal/account/domain"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	"github.com/smallbiznis/telcox/internal/clock"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	PlanSvc plandomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	planSvc plandomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("account.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		planSvc: p.PlanSvc,
	}
}

func (s *Service) Current(ctx context.Context) (domain.Account, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Account{}, domain.ErrInvalidAccount
	}

	item, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if item == nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAccountRequest) (domain.Account, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Account{}, domain.ErrInvalidAccount
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Account{}, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if len(phone) > 20 {
			return domain.Account{}, domain.ErrInvalidPhone
		}
		fields["phone"] = phone
	}
	if req.PlanCode != nil {
		plan, err := s.planSvc.ResolveActiveCode(ctx, *req.PlanCode)
		if err != nil {
			return domain.Account{}, err
		}
		fields["plan_id"] = plan.ID
	}

	var updated *domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			fields["updated_at"] = s.clock.Now()
			if err := s.repo.Update(ctx, tx, accountID, fields); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.repo.FindByID(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return domain.Account{}, err
	}
	if updated == nil {
		return domain.Account{}, domain.ErrNotFound
	}

	if _, changed := fields["plan_id"]; changed {
		s.log.Info("account plan changed",
			zap.String("account_id", accountID.String()),
			zap.String("plan_id", updated.PlanID.String()),
		)
	}
	return *updated, nil
}
