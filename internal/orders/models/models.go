package models

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Product — строка каталога. Stock меняется только движком заказов
// (под блокировкой строки) и через PATCH каталога.
type Product struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	SKU        string `gorm:"type:text;not null;uniqueIndex:ux_products_sku"`
	Name       string `gorm:"type:text;not null"`
	PriceCents int64  `gorm:"not null"`
	Stock      int64  `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement"`
	CustomerID int64       `gorm:"not null;index"`
	Status     OrderStatus `gorm:"type:text;not null;default:'CREATED';index"`
	TotalCents int64       `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem фиксирует цену на момент создания заказа —
// последующие изменения каталога на неё не влияют.
type OrderItem struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	OrderID        int64 `gorm:"not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductID      int64 `gorm:"not null;uniqueIndex:ux_order_items_order_product"`
	Qty            int64 `gorm:"not null"`
	UnitPriceCents int64 `gorm:"not null"`
	SubtotalCents  int64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

// IdempotencyKey хранит дословное тело первого успешного ответа подтверждения.
// ResponseBody — text, а не jsonb: повтор обязан быть байт-в-байт идентичным.
type IdempotencyKey struct {
	IdempotencyKey string `gorm:"primaryKey;type:text;column:idempotency_key"`
	OrderID        int64  `gorm:"not null;index"`
	ResponseBody   string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }
