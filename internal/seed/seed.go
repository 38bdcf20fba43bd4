package seed

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

const (
	rootAdminID       = "LBT-ADMIN"
	rootAdminName     = "Shop Admin"
	rootAdminMobile   = "0000000000"
	rootAdminPassword = "123456"
)

// EnsureRootAdmin seeds the administrative account a fresh install needs
// to create workers and orders.
func EnsureRootAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userdomain.User{}).Where("id = ?", rootAdminID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		return tx.Exec(`
			INSERT INTO users (id, name, mobile, role, status, upline_id, magic_upline_id, password, can_withdraw, joined_at, created_at)
			VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?)
		`, rootAdminID, rootAdminName, rootAdminMobile, userdomain.RoleAdmin,
			userdomain.StatusActive, rootAdminPassword, true, now, now).Error
	})
}

// EnsureDefaultRates seeds the stitching rate card when the table is
// empty. An operator-edited table is never touched.
func EnsureDefaultRates(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ratedomain.StitchingRate{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, rate := range defaultRates() {
			if err := tx.Exec(`
				INSERT INTO stitching_rates (id, type, normal, medium, regular, vip, rate_type, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, rate.ID, rate.Type, rate.Normal, rate.Medium, rate.Regular, rate.VIP,
				rate.RateType, now, now).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func defaultRates() []ratedomain.StitchingRate {
	fixed := func(id int64, label string, normal, medium, regular, vip float64) ratedomain.StitchingRate {
		return ratedomain.StitchingRate{
			ID: id, Type: label,
			Normal: normal, Medium: medium, Regular: regular, VIP: vip,
			RateType: ratedomain.RateTypeFixed,
		}
	}
	return []ratedomain.StitchingRate{
		fixed(1, "Shirt Measurement", 30, 40, 50, 70),
		fixed(2, "Shirt Cutting", 50, 60, 80, 100),
		fixed(3, "Shirt Maker", 200, 250, 300, 450),
		fixed(4, "Pant Measurement", 30, 40, 50, 70),
		fixed(5, "Pant Cutting", 50, 60, 80, 100),
		fixed(6, "Pant Maker", 200, 250, 300, 450),
		fixed(7, "Kaaj Button", 10, 15, 20, 30),
		fixed(8, "Press (Paresh)", 15, 20, 25, 40),
		fixed(9, "Trendy Fit Edition", 800, 1000, 1200, 1800),
	}
}
