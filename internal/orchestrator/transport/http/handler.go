package http

import (
	"encoding/json"
	"net/http"

	"shophub/internal/dto"
	"shophub/internal/orchestrator/saga"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlaceOrderHandler struct {
	saga *saga.Saga
	log  *zap.Logger
}

func NewPlaceOrderHandler(sg *saga.Saga, log *zap.Logger) *PlaceOrderHandler {
	return &PlaceOrderHandler{saga: sg, log: log}
}

type placeOrderRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
	Items      []struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Qty       int64 `json:"qty" binding:"required"`
	} `json:"items"`
	IdempotencyKey string  `json:"idempotency_key"`
	CorrelationID  *string `json:"correlation_id"`
}

type placeOrderResponse struct {
	Success       bool           `json:"success"`
	CorrelationID *string        `json:"correlationId"`
	Data          placeOrderData `json:"data"`
}

type placeOrderData struct {
	Customer json.RawMessage `json:"customer"`
	Order    json.RawMessage `json:"order"`
}

func (h *PlaceOrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}

	in := saga.PlaceOrderInput{
		CustomerID:     req.CustomerID,
		IdempotencyKey: req.IdempotencyKey,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, saga.ItemInput{ProductID: it.ProductID, Qty: it.Qty})
	}

	// correlation_id берём из тела; заголовок — запасной вариант.
	corrID := req.CorrelationID
	if corrID == nil {
		if v := c.GetHeader("X-Correlation-Id"); v != "" {
			corrID = &v
		}
	}

	result, fail := h.saga.Execute(c.Request.Context(), in)
	if fail != nil {
		var details any
		if len(fail.Details) > 0 {
			details = fail.Details
		}
		c.JSON(fail.Status, dto.NewError(fail.Code, fail.Message, details))
		return
	}

	c.JSON(http.StatusCreated, placeOrderResponse{
		Success:       true,
		CorrelationID: corrID,
		Data: placeOrderData{
			Customer: result.Customer,
			Order:    result.Order,
		},
	})
}
