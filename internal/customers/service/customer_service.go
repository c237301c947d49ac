package service

import (
	"context"
	"encoding/json"

	"shophub/internal/customers/cache"
	"shophub/internal/customers/models"
	"shophub/internal/customers/repository"

	"go.uber.org/zap"
)

type CreateCustomerInput struct {
	Name  string
	Email string
	Phone *string
}

type UpdateCustomerInput struct {
	Name  *string
	Email *string
	Phone *string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomers(ctx context.Context, f repository.CustomerListFilter) ([]models.Customer, *int64, error)
	UpdateCustomer(ctx context.Context, id int64, in UpdateCustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	// GetInternal отдаёт компактную карточку клиента для других сервисов,
	// с кэшем в Redis при его наличии.
	GetInternal(ctx context.Context, id int64) (json.RawMessage, error)
}

// internalCustomer — межсервисное представление. Телефон наружу не отдаём.
type internalCustomer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type customerService struct {
	repo  repository.CustomerRepo
	cache *cache.RedisClient
	log   *zap.Logger
}

func NewCustomerService(repo repository.CustomerRepo, rc *cache.RedisClient, log *zap.Logger) CustomerService {
	return &customerService{repo: repo, cache: rc, log: log}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	cust := &models.Customer{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	err := s.repo.WithTx(ctx, func(tx repository.CustomerRepo) error {
		existing, err := tx.GetByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}
		return tx.Create(ctx, cust)
	})
	if err != nil {
		return nil, err
	}
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context, f repository.CustomerListFilter) ([]models.Customer, *int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	list, err := s.repo.List(ctx, f)
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

func (s *customerService) UpdateCustomer(ctx context.Context, id int64, in UpdateCustomerInput) (*models.Customer, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	var out *models.Customer
	err := s.repo.WithTx(ctx, func(tx repository.CustomerRepo) error {
		c, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrCustomerNotFound
		}
		if in.Email != nil && *in.Email != c.Email {
			dup, err := tx.GetByEmail(ctx, *in.Email)
			if err != nil {
				return err
			}
			if dup != nil {
				return ErrEmailAlreadyExists
			}
		}
		if err := tx.Update(ctx, id, fields); err != nil {
			return err
		}
		out, err = tx.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return out, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCustomerNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *customerService) GetInternal(ctx context.Context, id int64) (json.RawMessage, error) {
	if s.cache != nil {
		if b, err := s.cache.GetCustomer(ctx, id); err != nil {
			s.log.Warn("Ошибка чтения кэша клиентов", zap.Int64("id", id), zap.Error(err))
		} else if b != nil {
			return json.RawMessage(b), nil
		}
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}

	payload, err := json.Marshal(internalCustomer{ID: c.ID, Name: c.Name, Email: c.Email})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCustomer(ctx, id, payload); err != nil {
			s.log.Warn("Ошибка записи кэша клиентов", zap.Int64("id", id), zap.Error(err))
		}
	}
	return payload, nil
}

func (s *customerService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCustomer(ctx, id); err != nil {
		s.log.Warn("Ошибка инвалидации кэша клиентов", zap.Int64("id", id), zap.Error(err))
	}
}
