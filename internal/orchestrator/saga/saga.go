package saga

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"shophub/internal/clients"

	"go.uber.org/zap"
)

// StepFailure — готовый к отдаче клиенту результат неудачного шага.
type StepFailure struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

// Step — именованный шаг сценария. Возвращает nil при успехе.
// Компенсаций нет: до подтверждения заказ остаётся в CREATED,
// и его можно отменить отдельным запросом.
type Step struct {
	Name string
	Run  func(ctx context.Context, st *State) *StepFailure
}

type ItemInput struct {
	ProductID int64
	Qty       int64
}

type PlaceOrderInput struct {
	CustomerID     int64
	Items          []ItemInput
	IdempotencyKey string
}

type State struct {
	in PlaceOrderInput

	Customer     json.RawMessage
	CreatedOrder *clients.CreatedOrder
	ConfirmBody  json.RawMessage
}

type Result struct {
	Customer json.RawMessage
	Order    json.RawMessage
}

type Saga struct {
	customers *clients.CustomersClient
	orders    *clients.OrdersClient
	log       *zap.Logger
}

func New(customers *clients.CustomersClient, orders *clients.OrdersClient, log *zap.Logger) *Saga {
	return &Saga{customers: customers, orders: orders, log: log}
}

func (s *Saga) steps() []Step {
	return []Step{
		{Name: "validate", Run: s.validate},
		{Name: "lookup-customer", Run: s.lookupCustomer},
		{Name: "create-order", Run: s.createOrder},
		{Name: "confirm-order", Run: s.confirmOrder},
	}
}

// Execute прогоняет шаги по порядку и останавливается на первой ошибке.
func (s *Saga) Execute(ctx context.Context, in PlaceOrderInput) (*Result, *StepFailure) {
	st := &State{in: in}
	for _, step := range s.steps() {
		if fail := step.Run(ctx, st); fail != nil {
			s.log.Warn("Шаг сценария завершился ошибкой",
				zap.String("step", step.Name),
				zap.String("code", fail.Code),
				zap.Int("status", fail.Status))
			return nil, fail
		}
	}

	order := st.ConfirmBody
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(st.ConfirmBody, &envelope); err == nil && len(envelope.Data) > 0 {
		order = envelope.Data
	}
	return &Result{Customer: st.Customer, Order: order}, nil
}

func (s *Saga) validate(_ context.Context, st *State) *StepFailure {
	if st.in.CustomerID <= 0 {
		return validationFailure("customer_id must be a positive integer")
	}
	if len(st.in.Items) == 0 {
		return validationFailure("items must not be empty")
	}
	for _, it := range st.in.Items {
		if it.ProductID <= 0 || it.Qty <= 0 {
			return validationFailure("each item needs a positive product_id and qty")
		}
	}
	if st.in.IdempotencyKey == "" {
		return validationFailure("idempotency key must not be empty")
	}
	return nil
}

func (s *Saga) lookupCustomer(ctx context.Context, st *State) *StepFailure {
	customer, err := s.customers.GetInternal(ctx, st.in.CustomerID)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrCustomerNotFound):
			return &StepFailure{Status: http.StatusNotFound, Code: "CUSTOMER_NOT_FOUND", Message: "customer not found"}
		case errors.Is(err, clients.ErrUnauthorized):
			return &StepFailure{Status: http.StatusBadGateway, Code: "CUSTOMERS_API_UNAUTHORIZED", Message: "customers api rejected service credentials"}
		default:
			return &StepFailure{Status: http.StatusBadGateway, Code: "CUSTOMERS_API_ERROR", Message: "customers api unavailable"}
		}
	}
	st.Customer = customer
	return nil
}

func (s *Saga) createOrder(ctx context.Context, st *State) *StepFailure {
	items := make([]clients.OrderItemRequest, 0, len(st.in.Items))
	for _, it := range st.in.Items {
		items = append(items, clients.OrderItemRequest{ProductID: it.ProductID, Qty: it.Qty})
	}
	ord, _, err := s.orders.CreateOrder(ctx, st.in.CustomerID, items)
	if err != nil {
		return upstreamFailure(err, http.StatusBadRequest, "ORDER_CREATION_FAILED", "order creation failed")
	}
	st.CreatedOrder = ord
	return nil
}

func (s *Saga) confirmOrder(ctx context.Context, st *State) *StepFailure {
	body, err := s.orders.ConfirmOrder(ctx, st.CreatedOrder.ID, st.in.IdempotencyKey)
	if err != nil {
		return upstreamFailure(err, http.StatusConflict, "ORDER_CONFIRMATION_FAILED", "order confirmation failed")
	}
	st.ConfirmBody = body
	return nil
}

func validationFailure(message string) *StepFailure {
	return &StepFailure{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

func upstreamFailure(err error, status int, code, message string) *StepFailure {
	fail := &StepFailure{Status: status, Code: code, Message: message}
	var up *clients.UpstreamError
	if errors.As(err, &up) {
		fail.Details = up.Body
	}
	return fail
}
