package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const draftKeyPrefix = "checkout_draft:"

// RedisStorage хранит черновики оформления заказа в Redis.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage создаёт хранилище черновиков поверх указанного клиента Redis.
// TTL ограничивает время жизни брошенных черновиков.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
	}
}

// Load возвращает сохранённый черновик или ErrNotFound.
func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, draftKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return payload, nil
}

// Save записывает черновик, обновляя его время жизни.
func (s *RedisStorage) Save(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, draftKeyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete удаляет черновик. Отсутствие ключа не считается ошибкой.
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
