package domain

import (
	"context"
	"errors"
)

type Service interface {
	Current(context.Context) (Balance, error)
}

var (
	ErrInvalidAccount = errors.New("invalid_account")
	ErrNotFound       = errors.New("balance_not_found")
)
