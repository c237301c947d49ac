package service

import (
	"context"
	"encoding/json"

	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"
)

type CreateOrderItemInput struct {
	ProductID int64
	Qty       int64
}

type CreateOrderInput struct {
	CustomerID int64
	Items      []CreateOrderItemInput
}

type OrderService interface {
	// CreateOrder атомарно создаёт заказ и списывает остатки.
	// Валидация всех позиций выполняется до первой записи.
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	// ConfirmOrder переводит заказ в CONFIRMED под ключом идемпотентности.
	// Повтор с тем же ключом возвращает сохранённый ответ байт в байт.
	ConfirmOrder(ctx context.Context, orderID int64, idempotencyKey string) (json.RawMessage, error)
	// CancelOrder отменяет заказ и возвращает остатки на склад.
	// Повторная отмена — no-op.
	CancelOrder(ctx context.Context, orderID int64) error
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, *int64, error)
}
