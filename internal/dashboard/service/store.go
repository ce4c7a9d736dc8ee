package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"gorm.io/gorm"
)

// txStore binds the usage and invoice repositories to one transaction.
type txStore struct {
	tx       *gorm.DB
	usage    usagedomain.Repository
	invoices invoicedomain.Repository
}

func (s txStore) SumQuantity(ctx context.Context, accountID snowflake.ID, from, to *time.Time) (float64, error) {
	return s.usage.SumQuantity(ctx, s.tx, accountID, from, to)
}

func (s txStore) CountInvoices(ctx context.Context, accountID snowflake.ID, status *invoicedomain.Status) (int64, error) {
	return s.invoices.Count(ctx, s.tx, accountID, status)
}
