package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/request/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, req *domain.Request) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO requests
			(id, user_id, type, amount, status, utr, method, payment_details,
			 resolver_id, resolved_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.UserID, req.Type, req.Amount, req.Status, req.UTR, req.Method,
		req.PaymentDetails, req.ResolverID, req.ResolvedAt, req.CreatedAt).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Request, error) {
	var req domain.Request
	err := db.WithContext(ctx).Raw(`SELECT * FROM requests WHERE id = ?`, id).Scan(&req).Error
	if err != nil {
		return nil, err
	}
	if req.ID == 0 {
		return nil, nil
	}
	return &req, nil
}

func (r *repo) MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, resolverID string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(`
		UPDATE requests SET status = ?, resolver_id = ?, resolved_at = ?
		WHERE id = ? AND status = ?
	`, status, resolverID, at, id, domain.StatusPending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]*domain.Request, error) {
	q := db.WithContext(ctx).Model(&domain.Request{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var reqs []*domain.Request
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}
