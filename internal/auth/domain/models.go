package domain

import (
	"context"
	"errors"

	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
)

const TokenTypeBearer = "bearer"

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	PlanCode string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string                `json:"access_token"`
	TokenType   string                `json:"token_type"`
	ExpiresIn   int64                 `json:"expires_in"`
	Account     accountdomain.Account `json:"account"`
}

// Principal is the authenticated caller behind a bearer token.
type Principal struct {
	Account accountdomain.Account
	TokenID string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (accountdomain.Account, error)
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (Principal, error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("password_too_short")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveAccount    = errors.New("account_inactive")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrExpiredToken       = errors.New("token_expired")
	ErrRevokedToken       = errors.New("token_revoked")
)
