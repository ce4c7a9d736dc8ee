package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, balance *Balance) error
	FindByAccountID(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*Balance, error)
}
