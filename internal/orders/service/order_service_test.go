package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"

	"go.uber.org/zap"
)

type recordingBus struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (b *recordingBus) PublishOrderEvent(_ context.Context, ev OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(t *testing.T) (*memRepo, OrderService, *recordingBus) {
	t.Helper()
	repo := newMemRepo()
	bus := &recordingBus{}
	return repo, NewOrderService(repo, bus, zap.NewNop()), bus
}

func TestCreateOrder_TotalsAndStockDebit(t *testing.T) {
	repo, svc, bus := newTestService(t)
	apples := repo.seedProduct("SKU-APPLE", 500, 10)
	pears := repo.seedProduct("SKU-PEAR", 300, 4)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 7,
		Items: []CreateOrderItemInput{
			{ProductID: apples, Qty: 2},
			{ProductID: pears, Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if ord.Status != models.OrderStatusCreated {
		t.Errorf("status = %s, want CREATED", ord.Status)
	}
	if ord.TotalCents != 2*500+3*300 {
		t.Errorf("total = %d, want %d", ord.TotalCents, 2*500+3*300)
	}
	if len(ord.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(ord.Items))
	}
	if ord.Items[0].SubtotalCents != 1000 || ord.Items[1].SubtotalCents != 900 {
		t.Errorf("subtotals = %d/%d, want 1000/900", ord.Items[0].SubtotalCents, ord.Items[1].SubtotalCents)
	}

	if got := repo.products[apples].Stock; got != 8 {
		t.Errorf("apple stock = %d, want 8", got)
	}
	if got := repo.products[pears].Stock; got != 1 {
		t.Errorf("pear stock = %d, want 1", got)
	}
	if evs := bus.types(); len(evs) != 1 || evs[0] != EventOrderCreated {
		t.Errorf("events = %v, want [%s]", evs, EventOrderCreated)
	}
}

func TestCreateOrder_ValidationAndRollback(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 5)

	if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 1}); !errors.Is(err, ErrEmptyItems) {
		t.Errorf("empty items: err = %v, want ErrEmptyItems", err)
	}
	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 0}},
	})
	if !errors.Is(err, ErrQuantityInvalid) {
		t.Errorf("zero qty: err = %v, want ErrQuantityInvalid", err)
	}
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: 999, Qty: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("unknown product: err = %v, want ErrProductNotFound", err)
	}

	// Повтор товара в позициях отклоняется до блокировок.
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items: []CreateOrderItemInput{
			{ProductID: id, Qty: 1},
			{ProductID: id, Qty: 2},
		},
	})
	if !errors.Is(err, ErrDuplicateOrderItem) {
		t.Errorf("duplicate item: err = %v, want ErrDuplicateOrderItem", err)
	}
	if got := repo.products[id].Stock; got != 5 {
		t.Errorf("stock after duplicate item = %d, want 5", got)
	}

	// Частично валидный заказ не должен оставить следов.
	other := repo.seedProduct("SKU-2", 200, 1)
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items: []CreateOrderItemInput{
			{ProductID: id, Qty: 2},
			{ProductID: other, Qty: 100},
		},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("oversell: err = %v, want ErrInsufficientStock", err)
	}
	if got := repo.products[id].Stock; got != 5 {
		t.Errorf("stock after failed create = %d, want 5", got)
	}
	if got := repo.products[other].Stock; got != 1 {
		t.Errorf("second stock after failed create = %d, want 1", got)
	}
	if len(repo.orders) != 0 || len(repo.items) != 0 {
		t.Errorf("orders/items after failed create = %d/%d, want 0/0", len(repo.orders), len(repo.items))
	}
}

func TestConfirmOrder_IdempotentReplay(t *testing.T) {
	repo, svc, bus := newTestService(t)
	id := repo.seedProduct("SKU-1", 250, 10)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 4}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	first, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-1")
	if err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	second, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-1")
	if err != nil {
		t.Fatalf("ConfirmOrder replay: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("replay body differs:\nfirst:  %s\nsecond: %s", first, second)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID         int64  `json:"id"`
			Status     string `json:"status"`
			TotalCents int64  `json:"total_cents"`
			Items      []struct {
				ProductID     int64 `json:"product_id"`
				Qty           int64 `json:"qty"`
				SubtotalCents int64 `json:"subtotal_cents"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(first, &resp); err != nil {
		t.Fatalf("unmarshal confirm body: %v", err)
	}
	if !resp.Success || resp.Data.Status != "CONFIRMED" || resp.Data.TotalCents != 1000 {
		t.Errorf("confirm body = %s", first)
	}
	if len(resp.Data.Items) != 1 || resp.Data.Items[0].Qty != 4 {
		t.Errorf("confirm items = %+v", resp.Data.Items)
	}

	if got := repo.orders[ord.ID].Status; got != models.OrderStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got)
	}
	// Повтор не публикует второе событие подтверждения.
	if evs := bus.types(); len(evs) != 2 || evs[1] != EventOrderConfirmed {
		t.Errorf("events = %v", evs)
	}
}

func TestConfirmOrder_SecondKeyOnConfirmedOrder(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 10)

	ord, _ := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 1}},
	})
	first, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-a")
	if err != nil {
		t.Fatalf("confirm key-a: %v", err)
	}
	second, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-b")
	if err != nil {
		t.Fatalf("confirm key-b: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("bodies differ across keys:\n%s\n%s", first, second)
	}
	if len(repo.idem) != 2 {
		t.Errorf("idempotency records = %d, want 2", len(repo.idem))
	}
}

func TestConfirmOrder_Errors(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 10)

	ord, _ := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 1}},
	})

	if _, err := svc.ConfirmOrder(context.Background(), ord.ID, ""); !errors.Is(err, ErrMissingIdempotencyKey) {
		t.Errorf("missing key: err = %v", err)
	}
	if _, err := svc.ConfirmOrder(context.Background(), 999, "key-x"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("unknown order: err = %v", err)
	}

	if err := svc.CancelOrder(context.Background(), ord.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if _, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-y"); !errors.Is(err, ErrOrderNotConfirmable) {
		t.Errorf("confirm canceled: err = %v, want ErrOrderNotConfirmable", err)
	}
}

func TestCancelOrder_RestocksAndIsIdempotent(t *testing.T) {
	repo, svc, bus := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 10)

	ord, _ := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 6}},
	})
	if got := repo.products[id].Stock; got != 4 {
		t.Fatalf("stock after create = %d, want 4", got)
	}

	if err := svc.CancelOrder(context.Background(), ord.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if got := repo.products[id].Stock; got != 10 {
		t.Errorf("stock after cancel = %d, want 10", got)
	}
	if got := repo.orders[ord.ID].Status; got != models.OrderStatusCanceled {
		t.Errorf("status = %s, want CANCELED", got)
	}

	// Повторная отмена не трогает остатки и не публикует событие.
	if err := svc.CancelOrder(context.Background(), ord.ID); err != nil {
		t.Fatalf("repeat CancelOrder: %v", err)
	}
	if got := repo.products[id].Stock; got != 10 {
		t.Errorf("stock after repeat cancel = %d, want 10", got)
	}
	if evs := bus.types(); len(evs) != 2 || evs[1] != EventOrderCanceled {
		t.Errorf("events = %v", evs)
	}

	if err := svc.CancelOrder(context.Background(), 999); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("cancel unknown: err = %v", err)
	}
}

func TestCancelOrder_FromConfirmedRestocks(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 5)

	ord, _ := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Items:      []CreateOrderItemInput{{ProductID: id, Qty: 5}},
	})
	if _, err := svc.ConfirmOrder(context.Background(), ord.ID, "key-1"); err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	if err := svc.CancelOrder(context.Background(), ord.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if got := repo.products[id].Stock; got != 5 {
		t.Errorf("stock after cancel of confirmed = %d, want 5", got)
	}
}

func TestListOrders_CursorPagination(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 100)

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerID: 1,
			Items:      []CreateOrderItemInput{{ProductID: id, Qty: 1}},
		}); err != nil {
			t.Fatalf("CreateOrder #%d: %v", i, err)
		}
	}

	page1, next, err := svc.ListOrders(context.Background(), repository.OrderListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(page1) != 2 || next == nil || *next != page1[1].ID {
		t.Fatalf("page1 len=%d next=%v", len(page1), next)
	}

	page2, next2, err := svc.ListOrders(context.Background(), repository.OrderListFilter{Cursor: *next, Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders page2: %v", err)
	}
	if len(page2) != 2 || page2[0].ID <= page1[1].ID {
		t.Fatalf("page2 = %+v", page2)
	}

	// Неполная, но непустая страница всё равно отдаёт курсор.
	page3, next3, err := svc.ListOrders(context.Background(), repository.OrderListFilter{Cursor: *next2, Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders page3: %v", err)
	}
	if len(page3) != 1 || next3 == nil || *next3 != page3[0].ID {
		t.Fatalf("page3 len=%d next=%v, want 1 row and its id as cursor", len(page3), next3)
	}

	page4, next4, err := svc.ListOrders(context.Background(), repository.OrderListFilter{Cursor: *next3, Limit: 2})
	if err != nil {
		t.Fatalf("ListOrders page4: %v", err)
	}
	if len(page4) != 0 || next4 != nil {
		t.Fatalf("page4 len=%d next=%v, want empty page and nil cursor", len(page4), next4)
	}

	st := models.OrderStatusConfirmed
	filtered, _, err := svc.ListOrders(context.Background(), repository.OrderListFilter{Status: &st, Limit: 10})
	if err != nil {
		t.Fatalf("ListOrders by status: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("confirmed orders = %d, want 0", len(filtered))
	}
}

func TestCreateOrder_ConcurrentNoOversell(t *testing.T) {
	repo, svc, _ := newTestService(t)
	id := repo.seedProduct("SKU-1", 100, 3)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
				CustomerID: 1,
				Items:      []CreateOrderItemInput{{ProductID: id, Qty: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, oversold int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			oversold++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 3 || oversold != 7 {
		t.Errorf("ok=%d oversold=%d, want 3/7", ok, oversold)
	}
	if got := repo.products[id].Stock; got != 0 {
		t.Errorf("final stock = %d, want 0", got)
	}
}
