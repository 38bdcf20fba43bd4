package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]*StitchingRate, error)
	ReplaceAll(ctx context.Context, db *gorm.DB, rates []StitchingRate) error
}
