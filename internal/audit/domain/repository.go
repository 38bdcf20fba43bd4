package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Action string
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, f ListFilter) ([]*AuditLog, error)
}
