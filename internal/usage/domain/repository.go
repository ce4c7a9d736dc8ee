package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Service ServiceKind
	From    *time.Time
	To      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *UsageRecord) error
	// List returns one page, newest first, plus the total row count.
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*UsageRecord, int64, error)
	// FetchRange returns records with from <= recorded_at, oldest first.
	FetchRange(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from time.Time) ([]UsageRecord, error)
	// SumQuantity sums quantity over the optional closed range. Zero rows yield 0.
	SumQuantity(ctx context.Context, db *gorm.DB, accountID snowflake.ID, from, to *time.Time) (float64, error)
}
