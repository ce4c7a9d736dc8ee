package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/plan/domain"
	"github.com/smallbiznis/telcox/pkg/db/option"
	pkgrepo "github.com/smallbiznis/telcox/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) pkgrepo.Repository[domain.Plan] {
	return pkgrepo.ProvideStore[domain.Plan](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return r.store(db).Create(ctx, plan)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	return r.store(db).FindOne(ctx, &domain.Plan{ID: id})
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	return r.store(db).FindOne(ctx, &domain.Plan{Code: code})
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*domain.Plan, error) {
	return r.store(db).Find(ctx, nil,
		option.ApplyOperator(option.Condition{Field: "active", Operator: option.EQ, Value: true}),
		option.WithSortBy(option.QuerySortBy{Default: "monthly_price"}),
	)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return r.store(db).Update(ctx, int64(id), fields)
}
