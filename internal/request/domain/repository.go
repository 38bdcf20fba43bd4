package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	UserID string
	Status Status
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *Request) error
	// FindByID returns (nil, nil) when the request does not exist.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Request, error)
	// MarkResolved flips a PENDING request to its final status. It reports
	// false when the request was already resolved, making resolution
	// exactly-once under concurrent approvals.
	MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, resolverID string, at time.Time) (bool, error)
	List(ctx context.Context, db *gorm.DB, f ListFilter) ([]*Request, error)
}
