package http

import (
	"context"
	"errors"
	"net/http"

	"shophub/internal/customers/service"
	"shophub/internal/dto"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	{service.ErrNoFieldsToUpdate, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update"},
	{service.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found"},
	{service.ErrEmailAlreadyExists, http.StatusConflict, "EMAIL_ALREADY_EXISTS", "email already exists"},
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
	c.JSON(http.StatusInternalServerError, dto.NewError("INTERNAL_ERROR", "internal server error", nil))
}
