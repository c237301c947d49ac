package service

import (
	"context"
	"encoding/json"
	"time"

	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderService struct {
	repo repository.Repository
	bus  EventBus
	log  *zap.Logger
}

func NewOrderService(repo repository.Repository, bus EventBus, log *zap.Logger) OrderService {
	return &orderService{repo: repo, bus: bus, log: log}
}

// confirmResponse — тело ответа подтверждения. Сериализуется один раз,
// байты сохраняются в idempotency_keys и отдаются клиенту как есть.
type confirmResponse struct {
	Success bool             `json:"success"`
	Data    confirmOrderData `json:"data"`
}

type confirmOrderData struct {
	ID         int64             `json:"id"`
	Status     string            `json:"status"`
	TotalCents int64             `json:"total_cents"`
	Items      []confirmItemData `json:"items"`
}

type confirmItemData struct {
	ProductID      int64 `json:"product_id"`
	Qty            int64 `json:"qty"`
	UnitPriceCents int64 `json:"unit_price_cents"`
	SubtotalCents  int64 `json:"subtotal_cents"`
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	seen := make(map[int64]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.Qty <= 0 {
			return nil, ErrQuantityInvalid
		}
		if _, ok := seen[it.ProductID]; ok {
			return nil, ErrDuplicateOrderItem
		}
		seen[it.ProductID] = struct{}{}
	}

	var created *models.Order
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		// Сначала блокируем и проверяем все товары, потом пишем.
		// Порядок блокировок — порядок позиций в запросе.
		locked := make([]*models.Product, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := tx.Products().GetForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return ErrProductNotFound
			}
			if p.Stock < it.Qty {
				return ErrInsufficientStock
			}
			locked = append(locked, p)
		}

		var total int64
		items := make([]models.OrderItem, 0, len(in.Items))
		for i, it := range in.Items {
			unit := locked[i].PriceCents
			sub := unit * it.Qty
			total += sub
			items = append(items, models.OrderItem{
				ProductID:      it.ProductID,
				Qty:            it.Qty,
				UnitPriceCents: unit,
				SubtotalCents:  sub,
			})
		}

		ord := &models.Order{
			CustomerID: in.CustomerID,
			Status:     models.OrderStatusCreated,
			TotalCents: total,
		}
		if err := tx.Orders().Create(ctx, ord); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = ord.ID
		}
		if err := tx.OrderItems().BulkCreate(ctx, items); err != nil {
			return err
		}
		for _, it := range in.Items {
			if err := tx.Products().AdjustStock(ctx, it.ProductID, -it.Qty); err != nil {
				return err
			}
		}
		ord.Items = items
		created = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderCreated, created)
	return created, nil
}

func (s *orderService) ConfirmOrder(ctx context.Context, orderID int64, idempotencyKey string) (json.RawMessage, error) {
	if idempotencyKey == "" {
		return nil, ErrMissingIdempotencyKey
	}

	var (
		raw       json.RawMessage
		confirmed *models.Order
	)
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		// Сначала блокируем строку заказа: параллельные подтверждения
		// с одним ключом сериализуются и не гонятся за вставку ключа.
		ord, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		rec, err := tx.Idempotency().GetForUpdate(ctx, idempotencyKey)
		if err != nil {
			return err
		}
		if rec != nil {
			// Повтор: отдаём сохранённые байты без повторной сериализации.
			raw = json.RawMessage(rec.ResponseBody)
			return nil
		}

		if ord == nil {
			return ErrOrderNotFound
		}

		switch ord.Status {
		case models.OrderStatusCreated:
			if err := tx.Orders().UpdateStatus(ctx, ord.ID, models.OrderStatusConfirmed); err != nil {
				return err
			}
			ord.Status = models.OrderStatusConfirmed
			confirmed = ord
		case models.OrderStatusConfirmed:
			// Уже подтверждён другим ключом: новый ключ получает тот же
			// ответ и тоже фиксируется в таблице.
		default:
			return ErrOrderNotConfirmable
		}

		items, err := tx.OrderItems().GetByOrderID(ctx, ord.ID)
		if err != nil {
			return err
		}
		body, err := buildConfirmBody(ord, items)
		if err != nil {
			return err
		}
		if err := tx.Idempotency().Create(ctx, &models.IdempotencyKey{
			IdempotencyKey: idempotencyKey,
			OrderID:        ord.ID,
			ResponseBody:   string(body),
		}); err != nil {
			return err
		}
		raw = body
		return nil
	})
	if err != nil {
		return nil, err
	}

	if confirmed != nil {
		s.publish(ctx, EventOrderConfirmed, confirmed)
	}
	return raw, nil
}

func buildConfirmBody(ord *models.Order, items []models.OrderItem) (json.RawMessage, error) {
	data := confirmOrderData{
		ID:         ord.ID,
		Status:     string(models.OrderStatusConfirmed),
		TotalCents: ord.TotalCents,
		Items:      make([]confirmItemData, 0, len(items)),
	}
	for _, it := range items {
		data.Items = append(data.Items, confirmItemData{
			ProductID:      it.ProductID,
			Qty:            it.Qty,
			UnitPriceCents: it.UnitPriceCents,
			SubtotalCents:  it.SubtotalCents,
		})
	}
	return json.Marshal(confirmResponse{Success: true, Data: data})
}

func (s *orderService) CancelOrder(ctx context.Context, orderID int64) error {
	var canceled *models.Order
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		ord, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
		if ord.Status == models.OrderStatusCanceled {
			return nil
		}

		// Возврат остатков выполняется и для подтверждённых заказов.
		items, err := tx.OrderItems().GetByOrderID(ctx, ord.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Products().AdjustStock(ctx, it.ProductID, it.Qty); err != nil {
				return err
			}
		}
		if err := tx.Orders().UpdateStatus(ctx, ord.ID, models.OrderStatusCanceled); err != nil {
			return err
		}
		ord.Status = models.OrderStatusCanceled
		canceled = ord
		return nil
	})
	if err != nil {
		return err
	}

	if canceled != nil {
		s.publish(ctx, EventOrderCanceled, canceled)
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	ord, err := s.repo.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f repository.OrderListFilter) ([]models.Order, *int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	list, err := s.repo.Orders().List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	// Курсор отдаём для любой непустой страницы; клиент листает до null.
	var next *int64
	if len(list) > 0 {
		last := list[len(list)-1].ID
		next = &last
	}
	return list, next, nil
}

func (s *orderService) publish(ctx context.Context, typ string, ord *models.Order) {
	if s.bus == nil || ord == nil {
		return
	}
	ev := OrderEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		OrderID:    ord.ID,
		CustomerID: ord.CustomerID,
		Status:     string(ord.Status),
		TotalCents: ord.TotalCents,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.bus.PublishOrderEvent(ctx, ev); err != nil {
		s.log.Warn("Не удалось опубликовать событие заказа",
			zap.String("type", typ), zap.Int64("order_id", ord.ID), zap.Error(err))
	}
}
