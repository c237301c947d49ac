package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"
)

// memRepo — репозиторий в памяти для юнит-тестов сервиса.
// WithTx сериализуется глобальным мьютексом, откат — восстановлением
// снимка состояния, так что транзакционная семантика сохраняется.
type memRepo struct {
	mu sync.Mutex

	products map[int64]models.Product
	orders   map[int64]models.Order
	items    []models.OrderItem
	idem     map[string]models.IdempotencyKey

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		products: map[int64]models.Product{},
		orders:   map[int64]models.Order{},
		idem:     map[string]models.IdempotencyKey{},
	}
}

func (m *memRepo) seedProduct(sku string, price, stock int64) int64 {
	m.nextProductID++
	id := m.nextProductID
	m.products[id] = models.Product{
		ID: id, SKU: sku, Name: sku, PriceCents: price, Stock: stock,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	return id
}

type memState struct {
	products map[int64]models.Product
	orders   map[int64]models.Order
	items    []models.OrderItem
	idem     map[string]models.IdempotencyKey

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
}

func (m *memRepo) snapshot() memState {
	st := memState{
		products:      make(map[int64]models.Product, len(m.products)),
		orders:        make(map[int64]models.Order, len(m.orders)),
		items:         append([]models.OrderItem(nil), m.items...),
		idem:          make(map[string]models.IdempotencyKey, len(m.idem)),
		nextProductID: m.nextProductID,
		nextOrderID:   m.nextOrderID,
		nextItemID:    m.nextItemID,
	}
	for k, v := range m.products {
		st.products[k] = v
	}
	for k, v := range m.orders {
		st.orders[k] = v
	}
	for k, v := range m.idem {
		st.idem[k] = v
	}
	return st
}

func (m *memRepo) restore(st memState) {
	m.products = st.products
	m.orders = st.orders
	m.items = st.items
	m.idem = st.idem
	m.nextProductID = st.nextProductID
	m.nextOrderID = st.nextOrderID
	m.nextItemID = st.nextItemID
}

func (m *memRepo) Products() repository.ProductRepo { return (*memProducts)(m) }

func (m *memRepo) Orders() repository.OrderRepo { return (*memOrders)(m) }

func (m *memRepo) OrderItems() repository.OrderItemRepo { return (*memItems)(m) }

func (m *memRepo) Idempotency() repository.IdempotencyRepo { return (*memIdem)(m) }

func (m *memRepo) WithTx(_ context.Context, fn func(tx repository.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(st)
		return err
	}
	return nil
}

type memProducts memRepo

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.nextProductID++
	p.ID = m.nextProductID
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.products[p.ID] = *p
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProducts) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProducts) GetForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return m.GetByID(ctx, id)
}

func (m *memProducts) Update(_ context.Context, id int64, fields map[string]any) error {
	p, ok := m.products[id]
	if !ok {
		return nil
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["price_cents"]; ok {
		p.PriceCents = v.(int64)
	}
	if v, ok := fields["stock"]; ok {
		p.Stock = v.(int64)
	}
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return nil
}

func (m *memProducts) AdjustStock(_ context.Context, id int64, delta int64) error {
	p, ok := m.products[id]
	if !ok {
		return errors.New("product missing")
	}
	if p.Stock+delta < 0 {
		return errors.New("check constraint: stock must be non-negative")
	}
	p.Stock += delta
	m.products[id] = p
	return nil
}

func (m *memProducts) List(_ context.Context, f repository.ProductListFilter) ([]models.Product, error) {
	var out []models.Product
	for id := f.Cursor + 1; id <= m.nextProductID && len(out) < f.Limit; id++ {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type memOrders memRepo

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.nextOrderID++
	o.ID = m.nextOrderID
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	items, _ := (*memItems)(m).GetByOrderID(ctx, id)
	o.Items = items
	return &o, nil
}

func (m *memOrders) GetForUpdate(_ context.Context, id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return errors.New("order missing")
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return nil
}

func (m *memOrders) List(_ context.Context, f repository.OrderListFilter) ([]models.Order, error) {
	var out []models.Order
	for id := f.Cursor + 1; id <= m.nextOrderID && len(out) < f.Limit; id++ {
		o, ok := m.orders[id]
		if !ok {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

type memItems memRepo

func (m *memItems) BulkCreate(_ context.Context, items []models.OrderItem) error {
	for i := range items {
		m.nextItemID++
		items[i].ID = m.nextItemID
		items[i].CreatedAt = time.Now()
		m.items = append(m.items, items[i])
	}
	return nil
}

func (m *memItems) GetByOrderID(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memIdem memRepo

func (m *memIdem) GetForUpdate(_ context.Context, key string) (*models.IdempotencyKey, error) {
	rec, ok := m.idem[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memIdem) Create(_ context.Context, rec *models.IdempotencyKey) error {
	if _, ok := m.idem[rec.IdempotencyKey]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	rec.CreatedAt = time.Now()
	m.idem[rec.IdempotencyKey] = *rec
	return nil
}
