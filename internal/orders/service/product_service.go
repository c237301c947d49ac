package service

import (
	"context"

	"shophub/internal/orders/models"
	"shophub/internal/orders/repository"

	"go.uber.org/zap"
)

type CreateProductInput struct {
	SKU        string
	Name       string
	PriceCents int64
	Stock      int64
}

type PatchProductInput struct {
	Name       *string
	PriceCents *int64
	Stock      *int64
}

type ProductService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, *int64, error)
	PatchProduct(ctx context.Context, id int64, in PatchProductInput) (*models.Product, error)
}

type productService struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewProductService(repo repository.Repository, log *zap.Logger) ProductService {
	return &productService{repo: repo, log: log}
}

func (s *productService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	p := &models.Product{
		SKU:        in.SKU,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
	}
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		existing, err := tx.Products().GetBySKU(ctx, in.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrSKUAlreadyExists
		}
		return tx.Products().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, *int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	list, err := s.repo.Products().List(ctx, f)
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

func (s *productService) PatchProduct(ctx context.Context, id int64, in PatchProductInput) (*models.Product, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.PriceCents != nil {
		fields["price_cents"] = *in.PriceCents
	}
	if in.Stock != nil {
		fields["stock"] = *in.Stock
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	var out *models.Product
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		p, err := tx.Products().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if err := tx.Products().Update(ctx, id, fields); err != nil {
			return err
		}
		p2, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = p2
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
