package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("upstream unavailable")
)

// CustomersClient ходит во внутренний API сервиса клиентов
// с межсервисным токеном.
type CustomersClient struct {
	Base  string
	Token string
	HTTP  *http.Client
}

func NewCustomersClient(base, serviceToken string) *CustomersClient {
	return &CustomersClient{
		Base:  base,
		Token: serviceToken,
		HTTP:  &http.Client{Timeout: 5 * time.Second},
	}
}

// GetInternal возвращает сырое тело внутренней карточки клиента.
func (c *CustomersClient) GetInternal(ctx context.Context, customerID int64) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/internal/customers/%d", c.Base, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return json.RawMessage(body), nil
	case http.StatusNotFound:
		return nil, ErrCustomerNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
