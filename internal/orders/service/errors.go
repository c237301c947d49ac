package service

import "errors"

var (
	ErrEmptyItems            = errors.New("items is empty")
	ErrQuantityInvalid       = errors.New("quantity must be positive")
	ErrDuplicateOrderItem    = errors.New("duplicate product in items")
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotConfirmable   = errors.New("order cannot be confirmed")
	ErrMissingIdempotencyKey = errors.New("idempotency key required")
	ErrSKUAlreadyExists      = errors.New("sku already exists")
	ErrNoFieldsToUpdate      = errors.New("no fields to update")
)
