package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/internal/balance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, balance *domain.Balance) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO balances (id, account_id, current, credit_limit, available, currency, last_updated_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		balance.ID,
		balance.AccountID,
		balance.Current,
		balance.CreditLimit,
		balance.Available,
		balance.Currency,
		balance.LastUpdatedAt,
		balance.CreatedAt,
		balance.UpdatedAt,
	).Error
}

func (r *repo) FindByAccountID(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.Balance, error) {
	var balance domain.Balance
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, current, credit_limit, available, currency, last_updated_at, created_at, updated_at
		 FROM balances WHERE account_id = ?`,
		accountID,
	).Scan(&balance).Error
	if err != nil {
		return nil, err
	}
	if balance.ID == 0 {
		return nil, nil
	}
	return &balance, nil
}
