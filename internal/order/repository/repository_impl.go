package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lordsbespoke/atelier/internal/order/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	history, err := order.WorkerHistory.Value()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`
		INSERT INTO orders
			(id, customer_name, customer_mobile, type, quality, price, measurements,
			 folder, stage, handover_status, assigned_worker_id, previous_worker_id,
			 worker_history, is_paid, creator_id, security_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.CustomerName, order.CustomerMobile, order.Type, order.Quality,
		order.Price, order.Measurements, order.Folder, order.Stage, order.HandoverStatus,
		order.AssignedWorkerID, order.PreviousWorkerID, history, order.IsPaid,
		order.CreatorID, order.SecurityCode, order.CreatedAt, order.UpdatedAt).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(`SELECT * FROM orders WHERE id = ?`, id).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	history, err := order.WorkerHistory.Value()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`
		UPDATE orders SET
			customer_name = ?, customer_mobile = ?, type = ?, quality = ?, price = ?,
			measurements = ?, folder = ?, stage = ?, handover_status = ?,
			assigned_worker_id = ?, previous_worker_id = ?, worker_history = ?,
			is_paid = ?, updated_at = ?
		WHERE id = ?
	`, order.CustomerName, order.CustomerMobile, order.Type, order.Quality, order.Price,
		order.Measurements, order.Folder, order.Stage, order.HandoverStatus,
		order.AssignedWorkerID, order.PreviousWorkerID, history, order.IsPaid,
		order.UpdatedAt, order.ID).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM orders WHERE id = ?`, id).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, f domain.ListFilter) ([]*domain.Order, error) {
	q := db.WithContext(ctx).Model(&domain.Order{})
	if f.WorkerID != "" {
		q = q.Where("assigned_worker_id = ?", f.WorkerID)
	}
	if f.Folder != "" {
		q = q.Where("folder = ?", f.Folder)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var orders []*domain.Order
	if err := q.Order("updated_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
