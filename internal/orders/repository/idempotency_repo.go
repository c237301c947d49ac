package repository

import (
	"context"
	"errors"

	"shophub/internal/orders/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdempotencyRepo — таблица ключ → сохранённый ответ. Записи не обновляются
// и не удаляются; Create на существующий ключ обязан падать по уникальности.
type IdempotencyRepo interface {
	GetForUpdate(ctx context.Context, key string) (*models.IdempotencyKey, error)
	Create(ctx context.Context, rec *models.IdempotencyKey) error
}

type idempotencyRepo struct{ db *gorm.DB }

func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepo { return &idempotencyRepo{db: db} }

func (r *idempotencyRepo) GetForUpdate(ctx context.Context, key string) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "idempotency_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rec, err
}

func (r *idempotencyRepo) Create(ctx context.Context, rec *models.IdempotencyKey) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
