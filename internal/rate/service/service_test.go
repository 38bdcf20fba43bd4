package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lordsbespoke/atelier/internal/rate/domain"
	"github.com/lordsbespoke/atelier/internal/rate/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:rate_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS stitching_rates (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		normal REAL NOT NULL,
		medium REAL NOT NULL,
		regular REAL NOT NULL,
		vip REAL NOT NULL,
		rate_type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error)

	svc := &Service{
		db:   db,
		log:  zaptest.NewLogger(t),
		repo: repository.Provide(),
	}
	return svc, db
}

func seedRate(t *testing.T, db *gorm.DB, id int64, label string, normal, medium, regular, vip float64, rateType domain.RateType) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO stitching_rates (id, type, normal, medium, regular, vip, rate_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, label, normal, medium, regular, vip, rateType,
	).Error)
}

func TestResolveFixed(t *testing.T) {
	svc, db := newTestService(t)
	seedRate(t, db, 1, "Shirt Measurement", 30, 40, 50, 70, domain.RateTypeFixed)
	seedRate(t, db, 3, "Shirt Maker", 200, 250, 300, 450, domain.RateTypeFixed)

	res, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		TaskType:    "Shirt",
		RoleKeyword: "Maker",
		Quality:     domain.QualityVIP,
		Price:       2000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rate.ID)
	assert.Equal(t, 450.0, res.BasePayout)
}

func TestResolvePercentage(t *testing.T) {
	svc, db := newTestService(t)
	seedRate(t, db, 9, "Trendy Fit Edition Maker", 10, 12, 15, 20, domain.RateTypePercentage)

	res, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		TaskType:    "Trendy Fit",
		RoleKeyword: "Maker",
		Quality:     domain.QualityRegular,
		Price:       1200,
	})
	require.NoError(t, err)
	assert.Equal(t, 180.0, res.BasePayout) // 1200 * 15%
}

func TestResolveUnknownQualityFallsBackToRegular(t *testing.T) {
	svc, db := newTestService(t)
	seedRate(t, db, 2, "Pant Cutting", 50, 60, 80, 100, domain.RateTypeFixed)

	res, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		TaskType:    "Pant",
		RoleKeyword: "Cutting",
		Quality:     domain.Quality(""),
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.BasePayout)
}

func TestResolveNotFound(t *testing.T) {
	svc, db := newTestService(t)
	seedRate(t, db, 1, "Shirt Maker", 200, 250, 300, 450, domain.RateTypeFixed)

	_, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		TaskType:    "Coat",
		RoleKeyword: "Press",
	})
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
}

// Overlapping labels can match the same request; the rule is first match in
// id order. This pin keeps that tie-break from drifting silently.
func TestResolveMultiMatchFirstWins(t *testing.T) {
	svc, db := newTestService(t)
	seedRate(t, db, 1, "Shirt Maker", 200, 250, 300, 450, domain.RateTypeFixed)
	seedRate(t, db, 2, "Designer Shirt Maker", 400, 500, 600, 900, domain.RateTypeFixed)

	res, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		TaskType:    "Shirt",
		RoleKeyword: "Maker",
		Quality:     domain.QualityNormal,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Rate.ID)
	assert.Equal(t, 200.0, res.BasePayout)
}

func TestReplaceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Replace(context.Background(), []domain.StitchingRate{
		{ID: 1, Type: "", RateType: domain.RateTypeFixed},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	err = svc.Replace(context.Background(), []domain.StitchingRate{
		{ID: 1, Type: "Shirt Maker", RateType: domain.RateType("Hourly")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}
