package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lordsbespoke/atelier/internal/ledger/domain"
	"github.com/lordsbespoke/atelier/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert appends one row, keyed by idempotency_key. The conflict clause
// goes through gorm so each dialect renders its own do-nothing form
// (postgres/sqlite ON CONFLICT, mysql ON DUPLICATE KEY UPDATE).
func (r *repo) Insert(ctx context.Context, db *gorm.DB, tx *domain.WalletTransaction) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(tx)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SumBalance(ctx context.Context, db *gorm.DB, userID string, walletType domain.WalletType) (float64, error) {
	q := db.WithContext(ctx).
		Table("wallet_transactions").
		Select(`COALESCE(SUM(CASE WHEN direction = ? THEN amount ELSE -amount END), 0)`, domain.DirectionCredit).
		Where("user_id = ?", userID)
	if walletType != "" && walletType != domain.WalletTotal {
		q = q.Where("wallet_type = ?", walletType)
	}

	var balance float64
	if err := q.Scan(&balance).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]*domain.WalletTransaction, error) {
	q := db.WithContext(ctx).
		Model(&domain.WalletTransaction{}).
		Where("user_id = ?", f.UserID)

	if f.WalletType != "" && f.WalletType != domain.WalletTotal {
		q = q.Where("wallet_type = ?", f.WalletType)
	}

	if f.Pagination.PageToken != "" {
		cursor, err := pagination.DecodeCursor(f.Pagination.PageToken)
		if err != nil {
			return nil, err
		}
		occurredAt, err := time.Parse(time.RFC3339Nano, cursor.OccurredAt)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		q = q.Where("(occurred_at < ?) OR (occurred_at = ? AND id < ?)",
			occurredAt, occurredAt, id)
	}

	limit := f.Pagination.Limit()

	var txs []*domain.WalletTransaction
	if err := q.Order("occurred_at DESC, id DESC").Limit(limit + 1).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
