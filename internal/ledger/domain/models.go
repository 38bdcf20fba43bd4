package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Direction carries the sign of a transaction. Amounts themselves are
// always strictly positive.
type Direction string

const (
	DirectionCredit Direction = "Credit"
	DirectionDebit  Direction = "Debit"
)

func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// WalletType partitions a user's balance by income source.
type WalletType string

const (
	WalletBooking     WalletType = "Booking"
	WalletDaily       WalletType = "Daily"
	WalletUpline      WalletType = "Upline"
	WalletDownline    WalletType = "Downline"
	WalletMagic       WalletType = "Magic"
	WalletPerformance WalletType = "Performance"

	// WalletTotal is a read-only pseudo type folding every wallet.
	WalletTotal WalletType = "Total"
)

func (w WalletType) Valid() bool {
	switch w {
	case WalletBooking, WalletDaily, WalletUpline, WalletDownline, WalletMagic, WalletPerformance:
		return true
	default:
		return false
	}
}

// WalletTransaction is one immutable ledger entry. Rows are append-only;
// balances are always derived by folding them, never stored.
type WalletTransaction struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID         string        `gorm:"not null;index:ix_wallet_tx_user_wallet,priority:1" json:"userId"`
	WalletType     WalletType    `gorm:"type:text;not null;index:ix_wallet_tx_user_wallet,priority:2" json:"walletType"`
	Direction      Direction     `gorm:"type:text;not null" json:"type"`
	Amount         float64       `gorm:"not null" json:"amount"`
	Description    string        `gorm:"type:text;not null" json:"description"`
	RelatedOrderID *snowflake.ID `gorm:"index" json:"relatedOrderId,omitempty"`
	RelatedUserID  string        `gorm:"type:text" json:"relatedUser,omitempty"`
	Level          string        `gorm:"type:text" json:"level,omitempty"`
	IdempotencyKey string        `gorm:"type:text;not null;uniqueIndex:ux_wallet_tx_idempotency" json:"-"`
	OccurredAt     time.Time     `gorm:"not null;index" json:"date"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }

// Signed returns the amount with its direction applied.
func (t WalletTransaction) Signed() float64 {
	if t.Direction == DirectionDebit {
		return -t.Amount
	}
	return t.Amount
}
