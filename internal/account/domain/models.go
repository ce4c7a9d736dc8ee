package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

type Account struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone        string        `json:"phone,omitempty"`
	PasswordHash string        `gorm:"not null" json:"-"`
	PlanID       *snowflake.ID `gorm:"index" json:"plan_id,omitempty"`
	Status       Status        `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

func (a Account) IsActive() bool {
	return a.Status == StatusActive
}
