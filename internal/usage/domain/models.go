// Package domain contains the persistence model for metered telecom usage.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ServiceKind names the metered service. Stored records may carry kinds
// this build does not know about; readers must tolerate them.
type ServiceKind string

const (
	ServiceData         ServiceKind = "data"
	ServiceVoiceMinutes ServiceKind = "voice_minutes"
	ServiceSMS          ServiceKind = "sms"
)

func (k ServiceKind) Known() bool {
	switch k {
	case ServiceData, ServiceVoiceMinutes, ServiceSMS:
		return true
	}
	return false
}

// DefaultUnit is the unit recorded when the caller does not send one.
func (k ServiceKind) DefaultUnit() string {
	switch k {
	case ServiceData:
		return "GB"
	case ServiceVoiceMinutes:
		return "min"
	case ServiceSMS:
		return "sms"
	}
	return ""
}

type Class string

const (
	ClassNormal  Class = "normal"
	ClassRoaming Class = "roaming"
	ClassPremium Class = "premium"
)

func (c Class) Known() bool {
	switch c {
	case ClassNormal, ClassRoaming, ClassPremium:
		return true
	}
	return false
}

// UsageRecord is an immutable usage event. TotalCost is expected to equal
// Quantity * UnitCost but the store does not check it.
type UsageRecord struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID  snowflake.ID      `gorm:"not null;index:idx_usage_account_recorded,priority:1" json:"account_id"`
	Service    ServiceKind       `gorm:"type:text;not null" json:"service"`
	Quantity   float64           `gorm:"not null" json:"quantity"`
	Unit       string            `gorm:"type:text;not null" json:"unit"`
	RecordedAt time.Time         `gorm:"not null;index:idx_usage_account_recorded,priority:2" json:"recorded_at"`
	Class      Class             `gorm:"size:16;not null;default:normal" json:"class"`
	UnitCost   float64           `gorm:"not null" json:"unit_cost"`
	TotalCost  float64           `gorm:"not null" json:"total_cost"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
}

func (UsageRecord) TableName() string { return "usage_records" }
