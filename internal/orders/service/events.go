package service

import (
	"context"
	"time"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderCanceled  = "order.canceled"
)

type OrderEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventBus публикует события жизненного цикла заказа. Публикация идёт
// после коммита транзакции и не влияет на результат операции.
type EventBus interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
}
