package http

import (
	"net/http"
	"strconv"
	"time"

	"shophub/internal/auth"
	"shophub/internal/customers/models"
	"shophub/internal/customers/repository"
	"shophub/internal/customers/service"
	"shophub/internal/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxListLimit = 100

type CustomerHandler struct {
	svc       service.CustomerService
	jwtSecret string
	log       *zap.Logger
}

func NewCustomerHandler(svc service.CustomerService, jwtSecret string, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, jwtSecret: jwtSecret, log: log}
}

type createCustomerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email string  `json:"email" binding:"required,email"`
	Phone *string `json:"phone"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

type customerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(c *models.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}
	cust, err := h.svc.CreateCustomer(c.Request.Context(), service.CreateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(cust))
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cust, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(cust))
}

func (h *CustomerHandler) List(c *gin.Context) {
	f := repository.CustomerListFilter{Search: c.Query("search"), Limit: 20}

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

	list, next, err := h.svc.ListCustomers(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]customerResponse, 0, len(list))
	for i := range list {
		data = append(data, toCustomerResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "next_cursor": next})
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}
	cust, err := h.svc.UpdateCustomer(c.Request.Context(), id, service.UpdateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(cust))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetInternal отдаёт сырые байты карточки, поэтому ответ из кэша
// и из базы совпадает дословно.
func (h *CustomerHandler) GetInternal(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	payload, err := h.svc.GetInternal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

type tokenRequest struct {
	Sub string `json:"sub" binding:"required"`
}

// IssueToken выдаёт HS256-токен для ручного тестирования API.
func (h *CustomerHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewError("VALIDATION_ERROR", "invalid request body", err.Error()))
		return
	}
	token, err := auth.SignToken(h.jwtSecret, req.Sub, auth.TokenTTL, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int64(auth.TokenTTL.Seconds()),
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewError("INVALID_ID", "id must be a positive integer", nil))
		return 0, false
	}
	return id, true
}
