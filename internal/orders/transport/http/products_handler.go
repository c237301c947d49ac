package http

import (
	"net/http"
	"strconv"
	"time"

	"shophub/internal/dto"
	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"
	"shophub/internal/orders/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc service.ProductService
	log *zap.Logger
}

func NewProductHandler(svc service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

type createProductRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name" binding:"required"`
	PriceCents int64  `json:"price_cents"`
	Stock      int64  `json:"stock"`
}

type patchProductRequest struct {
	Name       *string `json:"name"`
	PriceCents *int64  `json:"price_cents"`
	Stock      *int64  `json:"stock"`
}

type productResponse struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int64     `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "price_cents and stock must be non-negative", nil))
		return
	}

	p, err := h.svc.CreateProduct(c.Request.Context(), service.CreateProductInput{
		SKU:        req.SKU,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) List(c *gin.Context) {
	f := repository.ProductListFilter{Search: c.Query("search"), Limit: 20}

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

	list, next, err := h.svc.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]productResponse, 0, len(list))
	for i := range list {
		data = append(data, toProductResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "next_cursor": next})
}

func (h *ProductHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req patchProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}
	if (req.PriceCents != nil && *req.PriceCents < 0) || (req.Stock != nil && *req.Stock < 0) {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "price_cents and stock must be non-negative", nil))
		return
	}

	p, err := h.svc.PatchProduct(c.Request.Context(), id, service.PatchProductInput{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}
