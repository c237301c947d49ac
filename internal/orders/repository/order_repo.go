package repository

import (
	"context"
	"errors"
	"time"

	"shophub/internal/orders/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderListFilter struct {
	Status *models.OrderStatus
	From   *time.Time
	To     *time.Time
	Cursor int64
	Limit  int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// GetForUpdate блокирует строку заказа (без подгрузки позиций).
	GetForUpdate(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
	List(ctx context.Context, f OrderListFilter) ([]models.Order, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("id > ?", f.Cursor)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	var list []models.Order
	err := q.Order("id ASC").Limit(f.Limit).Find(&list).Error
	return list, err
}
