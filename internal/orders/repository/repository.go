package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository — явный транзакционный handle хранилища заказов.
// WithTx передаёт в замыкание экземпляр, привязанный к одной транзакции;
// все блокировки строк, взятые внутри, держатся до её конца.
type Repository interface {
	Products() ProductRepo
	Orders() OrderRepo
	OrderItems() OrderItemRepo
	Idempotency() IdempotencyRepo

	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

type gormRepository struct {
	db          *gorm.DB
	products    ProductRepo
	orders      OrderRepo
	orderItems  OrderItemRepo
	idempotency IdempotencyRepo
}

func New(db *gorm.DB) Repository {
	return &gormRepository{
		db:          db,
		products:    &productRepo{db: db},
		orders:      &orderRepo{db: db},
		orderItems:  &orderItemRepo{db: db},
		idempotency: &idempotencyRepo{db: db},
	}
}

func (r *gormRepository) Products() ProductRepo { return r.products }

func (r *gormRepository) Orders() OrderRepo { return r.orders }

func (r *gormRepository) OrderItems() OrderItemRepo { return r.orderItems }

func (r *gormRepository) Idempotency() IdempotencyRepo { return r.idempotency }

func (r *gormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
