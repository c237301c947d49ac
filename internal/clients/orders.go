package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UpstreamError — недвухсотый ответ сервиса заказов. Тело сохраняется
// как есть, чтобы оркестратор мог пробросить детали клиенту.
type UpstreamError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("orders api: status %d", e.StatusCode)
}

type OrdersClient struct {
	Base  string
	Token string
	HTTP  *http.Client
}

func NewOrdersClient(base, serviceToken string) *OrdersClient {
	return &OrdersClient{
		Base:  base,
		Token: serviceToken,
		HTTP:  &http.Client{Timeout: 5 * time.Second},
	}
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Qty       int64 `json:"qty"`
}

type CreatedOrder struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

func (c *OrdersClient) CreateOrder(ctx context.Context, customerID int64, items []OrderItemRequest) (*CreatedOrder, json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"customer_id": customerID,
		"items":       items,
	})
	if err != nil {
		return nil, nil, err
	}
	body, err := c.do(ctx, http.MethodPost, c.Base+"/orders", payload, nil)
	if err != nil {
		return nil, nil, err
	}
	var ord CreatedOrder
	if err := json.Unmarshal(body, &ord); err != nil {
		return nil, nil, err
	}
	return &ord, body, nil
}

func (c *OrdersClient) ConfirmOrder(ctx context.Context, orderID int64, idempotencyKey string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/orders/%d/confirm", c.Base, orderID)
	return c.do(ctx, http.MethodPost, url, nil, map[string]string{
		"X-Idempotency-Key": idempotencyKey,
	})
}

func (c *OrdersClient) do(ctx context.Context, method, url string, payload []byte, headers map[string]string) (json.RawMessage, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: json.RawMessage(body)}
	}
	return json.RawMessage(body), nil
}
