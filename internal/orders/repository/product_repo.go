package repository

import (
	"context"
	"errors"

	"shophub/internal/orders/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductListFilter struct {
	Search string
	Cursor int64
	Limit  int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	// GetForUpdate читает строку товара под эксклюзивной блокировкой
	// до конца текущей транзакции.
	GetForUpdate(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	// AdjustStock сдвигает остаток на delta (отрицательная — списание).
	AdjustStock(ctx context.Context, id int64, delta int64) error
	List(ctx context.Context, f ProductListFilter) ([]models.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta int64) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = stock + @delta,
    updated_at = now()
WHERE id = @pid
`, map[string]any{"pid": id, "delta": delta}).Error
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("id > ?", f.Cursor)
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where("sku ILIKE ? OR name ILIKE ?", term, term)
	}
	var list []models.Product
	err := q.Order("id ASC").Limit(f.Limit).Find(&list).Error
	return list, err
}
