package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/audit/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO audit_logs (id, action, level, actor_id, order_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Action, entry.Level, entry.ActorID, entry.OrderID, entry.Detail, entry.CreatedAt).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]*domain.AuditLog, error) {
	q := db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []*domain.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
