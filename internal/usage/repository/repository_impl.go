package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/usage/domain"
	"github.com/smallbiznis/telcox/pkg/db/option"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.UsageRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO usage_records (id, account_id, service, quantity, unit, recorded_at, class, unit_cost, total_cost, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.AccountID,
		record.Service,
		record.Quantity,
		record.Unit,
		record.RecordedAt,
		record.Class,
		record.UnitCost,
		record.TotalCost,
		record.Metadata,
		record.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.UsageRecord, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.UsageRecord{}).
		Where("account_id = ?", accountID)
	if filter.Service != "" {
		stmt = stmt.Where("service = ?", filter.Service)
	}
	if filter.From != nil {
		stmt = stmt.Where("recorded_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("recorded_at <= ?", *filter.To)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*domain.UsageRecord
	err := option.ApplyPagination(page).Apply(stmt).
		Order("recorded_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repo) FetchRange(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from time.Time) ([]domain.UsageRecord, error) {
	var records []domain.UsageRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, service, quantity, unit, recorded_at, class, unit_cost, total_cost, metadata, created_at
		 FROM usage_records
		 WHERE account_id = ? AND recorded_at >= ?
		 ORDER BY recorded_at ASC, id ASC`,
		accountID,
		from,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) SumQuantity(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from, to *time.Time) (float64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.UsageRecord{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("account_id = ?", accountID)
	if from != nil {
		stmt = stmt.Where("recorded_at >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("recorded_at <= ?", *to)
	}

	var total float64
	if err := stmt.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
