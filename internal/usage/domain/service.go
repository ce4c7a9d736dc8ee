package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/telcox/pkg/db/pagination"
)

type IngestRequest struct {
	AccountID  string         `json:"account_id"`
	Service    ServiceKind    `json:"service" binding:"required"`
	Quantity   float64        `json:"quantity" binding:"gte=0"`
	Unit       string         `json:"unit"`
	RecordedAt *time.Time     `json:"recorded_at"`
	Class      Class          `json:"class"`
	UnitCost   float64        `json:"unit_cost" binding:"gte=0"`
	TotalCost  *float64       `json:"total_cost" binding:"omitempty,gte=0"`
	Metadata   map[string]any `json:"metadata"`
}

type ListRequest struct {
	pagination.Pagination
	Service string
	From    *time.Time
	To      *time.Time
}

type Service interface {
	Ingest(context.Context, IngestRequest) (UsageRecord, error)
	List(context.Context, ListRequest) (pagination.Page[UsageRecord], error)
}

var (
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrForeignAccount  = errors.New("account_mismatch")
	ErrInvalidService  = errors.New("invalid_service")
	ErrInvalidClass    = errors.New("invalid_class")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidCost     = errors.New("invalid_cost")
	ErrInvalidRange    = errors.New("invalid_range")
)
