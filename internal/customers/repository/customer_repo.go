package repository

import (
	"context"
	"errors"

	"shophub/internal/customers/models"

	"gorm.io/gorm"
)

type CustomerListFilter struct {
	Search string
	Cursor int64
	Limit  int
}

type CustomerRepo interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f CustomerListFilter) ([]models.Customer, error)
	WithTx(ctx context.Context, fn func(tx CustomerRepo) error) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) CustomerRepo { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *customerRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(fields).Error
}

func (r *customerRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

func (r *customerRepo) List(ctx context.Context, f CustomerListFilter) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id > ?", f.Cursor)
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ?", term, term)
	}
	var list []models.Customer
	err := q.Order("id ASC").Limit(f.Limit).Find(&list).Error
	return list, err
}

func (r *customerRepo) WithTx(ctx context.Context, fn func(tx CustomerRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewCustomerRepo(tx))
	})
}
