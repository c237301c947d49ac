package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient кэширует внутренние карточки клиентов для межсервисных
// запросов. Кэш опционален: при nil-клиенте сервис ходит в базу.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{client: rdb, ttl: ttl, log: log}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func customerKey(id int64) string {
	return fmt.Sprintf("customer:internal:%d", id)
}

func (r *RedisClient) SetCustomer(ctx context.Context, id int64, payload []byte) error {
	return r.client.Set(ctx, customerKey(id), payload, r.ttl).Err()
}

// GetCustomer возвращает nil без ошибки при промахе.
func (r *RedisClient) GetCustomer(ctx context.Context, id int64) ([]byte, error) {
	b, err := r.client.Get(ctx, customerKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return b, err
}

func (r *RedisClient) InvalidateCustomer(ctx context.Context, id int64) error {
	return r.client.Del(ctx, customerKey(id)).Err()
}
