package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeAddFunds Type = "ADD_FUNDS"
	TypeWithdraw Type = "WITHDRAW"
)

func (t Type) Valid() bool {
	return t == TypeAddFunds || t == TypeWithdraw
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is a user-initiated fund movement awaiting administrative
// approval. Amount is stored exactly as submitted; it is sanitized at
// approval time so the ledger write sees the normalized value.
type Request struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID         string       `gorm:"type:text;not null;index" json:"userId"`
	Type           Type         `gorm:"type:text;not null" json:"type"`
	Amount         string       `gorm:"type:text;not null" json:"amount"`
	Status         Status       `gorm:"type:text;not null;index" json:"status"`
	UTR            string       `gorm:"column:utr;type:text" json:"utr,omitempty"`
	Method         string       `gorm:"type:text" json:"method,omitempty"`
	PaymentDetails string       `gorm:"type:text" json:"paymentDetails,omitempty"`
	ResolverID     string       `gorm:"type:text" json:"resolverId,omitempty"`
	ResolvedAt     *time.Time   `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"createdAt"`
}

func (Request) TableName() string { return "requests" }
