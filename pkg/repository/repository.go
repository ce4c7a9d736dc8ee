package repository

import (
	"context"

	"github.com/smallbiznis/telcox/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic CRUD store keyed by a numeric id column.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID int64, resource any) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}
