package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Actions recorded in the trail.
const (
	ActionRateNotFound    = "rate_not_found"
	ActionOrderDeleted    = "order_deleted"
	ActionRequestResolved = "request_resolved"
	ActionManualRelease   = "manual_release"
	ActionRatesReplaced   = "rates_replaced"
)

// Level is the event severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// AuditLog is one append-only operational event. The rate_not_found
// action is what distinguishes a skipped cascade from a zero-payout one.
type AuditLog struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Action    string        `gorm:"type:text;not null;index" json:"action"`
	Level     Level         `gorm:"column:level;type:text;not null" json:"level"`
	ActorID   string        `gorm:"type:text" json:"actorId,omitempty"`
	OrderID   *snowflake.ID `gorm:"index" json:"orderId,omitempty"`
	Detail    string        `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time     `gorm:"not null" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
