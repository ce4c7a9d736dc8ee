package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Plan struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code            string          `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description,omitempty"`
	MonthlyPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_price"`
	DataIncludedGB  float64         `gorm:"column:data_included_gb;not null" json:"data_included_gb"`
	MinutesIncluded int             `gorm:"not null" json:"minutes_included"`
	SMSIncluded     int             `gorm:"column:sms_included;not null" json:"sms_included"`
	MaxSpeedMbps    float64         `gorm:"not null" json:"max_speed_mbps"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }
