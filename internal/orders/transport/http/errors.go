package http

import (
	"context"
	"errors"
	"net/http"

	"shophub/internal/dto"
	"shophub/internal/orders/service"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Таблица трансляции ошибок домена в HTTP. Порядок важен:
// первый errors.Is-совпавший элемент выигрывает.
var errorTable = []errorMapping{
	{service.ErrEmptyItems, http.StatusBadRequest, "VALIDATION_ERROR", "items must not be empty"},
	{service.ErrQuantityInvalid, http.StatusBadRequest, "VALIDATION_ERROR", "qty must be a positive integer"},
	{service.ErrDuplicateOrderItem, http.StatusBadRequest, "VALIDATION_ERROR", "items must not repeat product_id"},
	{service.ErrMissingIdempotencyKey, http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "X-Idempotency-Key header is required"},
	{service.ErrNoFieldsToUpdate, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update"},
	{service.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found"},
	{service.ErrOrderNotConfirmable, http.StatusForbidden, "ORDER_NOT_CONFIRMABLE", "order cannot be confirmed"},
	{service.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK", "insufficient stock"},
	{service.ErrSKUAlreadyExists, http.StatusConflict, "SKU_ALREADY_EXISTS", "sku already exists"},
}

func respondError(c *gin.Context, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, dto.NewError(m.code, m.message, err.Error()))
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusServiceUnavailable, dto.NewError("SERVICE_UNAVAILABLE", "request timed out", nil))
		return
	}
	// Внутренние ошибки наружу не детализируем.
	c.JSON(http.StatusInternalServerError, dto.NewError("INTERNAL_ERROR", "internal server error", nil))
}
