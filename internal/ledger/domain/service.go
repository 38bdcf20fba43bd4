package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/pkg/db/pagination"
)

var (
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidWalletType    = errors.New("invalid_wallet_type")
	ErrInvalidDirection     = errors.New("invalid_direction")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrDuplicateTransaction = errors.New("duplicate_transaction")
)

type RecordRequest struct {
	UserID         string
	WalletType     WalletType
	Direction      Direction
	Amount         float64
	Description    string
	RelatedOrderID *snowflake.ID
	RelatedUserID  string
	Level          string
	// IdempotencyKey guards against double-writes on retry. When empty a
	// fresh key is generated, making the write always-once rather than
	// at-most-once.
	IdempotencyKey string
}

type HistoryRequest struct {
	UserID     string
	WalletType WalletType
	Pagination pagination.Pagination
}

type HistoryResponse struct {
	Transactions []*WalletTransaction `json:"transactions"`
	PageInfo     *pagination.PageInfo `json:"pageInfo"`
}

type ManualReleaseRequest struct {
	UserID      string
	WalletType  WalletType
	Amount      string
	Description string
	ActorID     string
}

type TransferRequest struct {
	FromUserID string
	ToUserID   string
	Amount     string
	Note       string
}

type Service interface {
	// Record appends one entry. ErrDuplicateTransaction means a previous
	// attempt already landed the identical write; callers treating the
	// operation as idempotent can ignore it.
	Record(ctx context.Context, req RecordRequest) (*WalletTransaction, error)

	// RecordTx is Record against a caller-supplied handle so the write
	// can join an enclosing transaction.
	RecordTx(ctx context.Context, db *gorm.DB, req RecordRequest) (*WalletTransaction, error)

	BalanceOf(ctx context.Context, userID string, walletType WalletType) (float64, error)
	HistoryOf(ctx context.Context, req HistoryRequest) (*HistoryResponse, error)

	// ManualRelease credits a wallet by an administrator's hand.
	ManualRelease(ctx context.Context, req ManualReleaseRequest) (*WalletTransaction, error)

	// Transfer moves funds between two users' Booking wallets as a
	// debit/credit pair in one transaction.
	Transfer(ctx context.Context, req TransferRequest) error
}
