package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	WorkerID string
	Folder   Folder
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	// FindByID returns (nil, nil) when the order does not exist.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	List(ctx context.Context, db *gorm.DB, f ListFilter) ([]*Order, error)
}
