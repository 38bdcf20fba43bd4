package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/pkg/db/pagination"
)

type ListFilter struct {
	UserID     string
	WalletType WalletType // empty or WalletTotal means all wallets
	Pagination pagination.Pagination
}

// Repository persists ledger rows. Every method takes the database
// handle explicitly so services can run several writes inside one
// transaction.
type Repository interface {
	// Insert appends a transaction. It reports false when a row with the
	// same idempotency key already exists, in which case nothing was
	// written.
	Insert(ctx context.Context, db *gorm.DB, tx *WalletTransaction) (bool, error)

	// SumBalance folds credits minus debits for one wallet, or for all
	// wallets when walletType is WalletTotal or empty.
	SumBalance(ctx context.Context, db *gorm.DB, userID string, walletType WalletType) (float64, error)

	List(ctx context.Context, db *gorm.DB, f ListFilter) ([]*WalletTransaction, error)
}
