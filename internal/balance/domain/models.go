package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

// Balance is the one-to-one money position of an account. Available is
// expected to equal Current + CreditLimit; writers keep it that way, reads
// do not check it.
type Balance struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID    `gorm:"not null;uniqueIndex" json:"account_id"`
	Current       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"current"`
	CreditLimit   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"credit_limit"`
	Available     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"available"`
	Currency      string          `gorm:"size:3;not null;default:USD" json:"currency"`
	LastUpdatedAt time.Time       `gorm:"not null" json:"last_updated_at"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Balance) TableName() string { return "balances" }

// NewZero builds the opening balance for a freshly registered account.
func NewZero(id, accountID snowflake.ID, creditLimit decimal.Decimal, now time.Time) Balance {
	return Balance{
		ID:            id,
		AccountID:     accountID,
		Current:       decimal.Zero,
		CreditLimit:   creditLimit,
		Available:     decimal.Zero.Add(creditLimit),
		Currency:      DefaultCurrency,
		LastUpdatedAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
