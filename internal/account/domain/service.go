package domain

import (
	"context"
	"errors"
)

type UpdateAccountRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	PlanCode *string `json:"plan_code"`
}

type Service interface {
	// Current returns the account bound to the request context.
	Current(context.Context) (Account, error)
	Update(context.Context, UpdateAccountRequest) (Account, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrNotFound       = errors.New("not_found")
)
