package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telcox/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Invoice, error)
	FindForUpdate(ctx context.Context, db *gorm.DB, accountID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, accountID snowflake.ID, status Status, page pagination.Pagination) ([]*Invoice, int64, error)
	// Count counts invoices of the account, optionally restricted to one status.
	Count(ctx context.Context, db *gorm.DB, accountID snowflake.ID, status *Status) (int64, error)
	// ListIssuedSince returns invoices issued at or after since, oldest first.
	ListIssuedSince(ctx context.Context, db *gorm.DB, accountID snowflake.ID, since time.Time) ([]Invoice, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, method string, paidAt time.Time) error
}
