package service

import (
	"context"

	"github.com/smallbiznis/telcox/internal/accountcontext"
	"github.com/smallbiznis/telcox/internal/balance/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("balance.service"),
		repo: p.Repo,
	}
}

func (s *Service) Current(ctx context.Context) (domain.Balance, error) {
	accountID, ok := accountcontext.AccountIDFromContext(ctx)
	if !ok {
		return domain.Balance{}, domain.ErrInvalidAccount
	}

	item, err := s.repo.FindByAccountID(ctx, s.db, accountID)
	if err != nil {
		return domain.Balance{}, err
	}
	if item == nil {
		return domain.Balance{}, domain.ErrNotFound
	}
	return *item, nil
}
