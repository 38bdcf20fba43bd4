package repository

import (
	"context"

	"github.com/lordsbespoke/atelier/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.StitchingRate, error) {
	var rates []*domain.StitchingRate
	err := db.WithContext(ctx).
		Model(&domain.StitchingRate{}).
		Order("id asc").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, rates []domain.StitchingRate) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM stitching_rates`).Error; err != nil {
			return err
		}
		for _, rate := range rates {
			if err := tx.Exec(
				`INSERT INTO stitching_rates (id, type, normal, medium, regular, vip, rate_type, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rate.ID,
				rate.Type,
				rate.Normal,
				rate.Medium,
				rate.Regular,
				rate.VIP,
				rate.RateType,
				rate.CreatedAt,
				rate.UpdatedAt,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
