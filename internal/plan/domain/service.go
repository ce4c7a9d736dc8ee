package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	MonthlyPrice    decimal.Decimal `json:"monthly_price"`
	DataIncludedGB  float64         `json:"data_included_gb" binding:"gte=0"`
	MinutesIncluded int             `json:"minutes_included" binding:"gte=0"`
	SMSIncluded     int             `json:"sms_included" binding:"gte=0"`
	MaxSpeedMbps    float64         `json:"max_speed_mbps" binding:"gte=0"`
}

type UpdatePlanRequest struct {
	ID              string           `json:"-"`
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	MonthlyPrice    *decimal.Decimal `json:"monthly_price"`
	DataIncludedGB  *float64         `json:"data_included_gb" binding:"omitempty,gte=0"`
	MinutesIncluded *int             `json:"minutes_included" binding:"omitempty,gte=0"`
	SMSIncluded     *int             `json:"sms_included" binding:"omitempty,gte=0"`
	MaxSpeedMbps    *float64         `json:"max_speed_mbps" binding:"omitempty,gte=0"`
	Active          *bool            `json:"active"`
}

type Service interface {
	Create(context.Context, CreatePlanRequest) (Plan, error)
	Update(context.Context, UpdatePlanRequest) (Plan, error)
	GetByID(ctx context.Context, id string) (Plan, error)
	// ResolveActiveCode returns the active plan with the given code.
	ResolveActiveCode(ctx context.Context, code string) (Plan, error)
	ListActive(context.Context) ([]Plan, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidCode  = errors.New("invalid_plan_code")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrDuplicate    = errors.New("plan_code_taken")
	ErrInactive     = errors.New("plan_inactive")
	ErrNotFound     = errors.New("not_found")
)
