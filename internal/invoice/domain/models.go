package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Payable reports whether the pay transition is allowed from s.
func (s Status) Payable() bool {
	return s == StatusPending || s == StatusOverdue
}

// Invoice amounts are expected to satisfy Total = Subtotal + Tax - Discount,
// and PaidAt is expected to be set only for paid invoices. Neither rule is
// checked on read.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID    `gorm:"not null;index" json:"account_id"`
	Number        string          `gorm:"size:64;not null;uniqueIndex" json:"number"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	IssuedAt      time.Time       `gorm:"not null;index" json:"issued_at"`
	DueAt         time.Time       `gorm:"not null" json:"due_at"`
	Status        Status          `gorm:"size:16;not null;default:pending" json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
