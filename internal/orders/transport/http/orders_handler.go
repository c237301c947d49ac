package http

import (
	"net/http"
	"strconv"
	"time"

	"shophub/internal/clients"
	"shophub/internal/dto"
	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"
	"shophub/internal/orders/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxListLimit = 100

type OrderHandler struct {
	svc       service.OrderService
	customers *clients.CustomersClient
	log       *zap.Logger
}

func NewOrderHandler(svc service.OrderService, customers *clients.CustomersClient, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, customers: customers, log: log}
}

type createOrderRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
	Items      []struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Qty       int64 `json:"qty" binding:"required"`
	} `json:"items"`
}

type orderItemResponse struct {
	ProductID      int64 `json:"product_id"`
	Qty            int64 `json:"qty"`
	UnitPriceCents int64 `json:"unit_price_cents"`
	SubtotalCents  int64 `json:"subtotal_cents"`
}

// createdOrderResponse — короткий ответ создания заказа. Полная форма
// с позициями доступна через GET /orders/:id.
type createdOrderResponse struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customer_id"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	CreatedAt  time.Time           `json:"created_at"`
	Items      []orderItemResponse `json:"items"`
}

func toOrderResponse(o *models.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		Items:      make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:      it.ProductID,
			Qty:            it.Qty,
			UnitPriceCents: it.UnitPriceCents,
			SubtotalCents:  it.SubtotalCents,
		})
	}
	return resp
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}

	// Существование клиента проверяем до создания заказа. Любая
	// неудача проверки трактуется как отсутствие клиента.
	if h.customers != nil {
		if _, err := h.customers.GetInternal(c.Request.Context(), req.CustomerID); err != nil {
			h.log.Warn("Проверка клиента не прошла", zap.Int64("customer_id", req.CustomerID), zap.Error(err))
			c.JSON(http.StatusNotFound, dto.NewError("CUSTOMER_NOT_FOUND", "customer not found", nil))
			return
		}
	}

	in := service.CreateOrderInput{CustomerID: req.CustomerID}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItemInput{ProductID: it.ProductID, Qty: it.Qty})
	}

	ord, err := h.svc.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdOrderResponse{
		ID:         ord.ID,
		Status:     string(ord.Status),
		TotalCents: ord.TotalCents,
	})
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	key := c.GetHeader("X-Idempotency-Key")

	raw, err := h.svc.ConfirmOrder(c.Request.Context(), id, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.CancelOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": string(models.OrderStatusCanceled)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ord, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(ord))
}

func (h *OrderHandler) List(c *gin.Context) {
	f := repository.OrderListFilter{Limit: 20}

	if s := c.Query("cursor"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, dto.NewError("INVALID_CURSOR", "cursor must be a non-negative integer", nil))
			return
		}
		f.Cursor = v
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxListLimit {
			c.JSON(http.StatusBadRequest, dto.NewError("INVALID_LIMIT", "limit must be in 1..100", nil))
			return
		}
		f.Limit = v
	}
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		switch st {
		case models.OrderStatusCreated, models.OrderStatusConfirmed, models.OrderStatusCanceled:
			f.Status = &st
		default:
			c.JSON(http.StatusBadRequest, dto.NewError("INVALID_STATUS", "status must be CREATED, CONFIRMED or CANCELED", nil))
			return
		}
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "from must be RFC3339", nil))
			return
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "to must be RFC3339", nil))
			return
		}
		f.To = &t
	}

	list, next, err := h.svc.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]orderResponse, 0, len(list))
	for i := range list {
		data = append(data, toOrderResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "next_cursor": next})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewError("INVALID_ID", "id must be a positive integer", nil))
		return 0, false
	}
	return id, true
}
