// Package redis хранит заказы в одном Redis-хэше (поле order_id, значение JSON-запись).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

const defaultPrefix = "ordertracker"

// OrderStorage: реализация domain.Storage поверх Redis.
type OrderStorage struct {
	client *goredis.Client
	key    string
}

// NewOrderStorage создаёт хранилище на готовом клиенте.
// Все заказы живут под ключом "<prefix>:orders".
func NewOrderStorage(client *goredis.Client, prefix string) *OrderStorage {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &OrderStorage{client: client, key: prefix + ":orders"}
}

// Open подключается к Redis по адресу addr и проверяет соединение.
func Open(ctx context.Context, addr, prefix string) (*OrderStorage, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewOrderStorage(client, prefix), nil
}

// Key возвращает имя хэша с заказами.
func (s *OrderStorage) Key() string {
	return s.key
}

// Close закрывает клиент.
func (s *OrderStorage) Close() error {
	return s.client.Close()
}

// SaveOrder перезаписывает поле хэша.
func (s *OrderStorage) SaveOrder(ctx context.Context, orderID string, order domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", orderID, err)
	}
	if err := s.client.HSet(ctx, s.key, orderID, payload).Err(); err != nil {
		return fmt.Errorf("hset order %s: %w", orderID, err)
	}
	return nil
}

// InsertOrder записывает заказ через HSETNX, то есть только в свободное поле.
func (s *OrderStorage) InsertOrder(ctx context.Context, orderID string, order domain.Order) (bool, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return false, fmt.Errorf("encode order %s: %w", orderID, err)
	}
	inserted, err := s.client.HSetNX(ctx, s.key, orderID, payload).Result()
	if err != nil {
		return false, fmt.Errorf("hsetnx order %s: %w", orderID, err)
	}
	return inserted, nil
}

// GetOrder возвращает заказ или found=false.
func (s *OrderStorage) GetOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, orderID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("hget order %s: %w", orderID, err)
	}

	order, err := decodeOrder(raw)
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return order, true, nil
}

// GetAllOrders читает весь хэш.
func (s *OrderStorage) GetAllOrders(ctx context.Context) (map[string]domain.Order, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall orders: %w", err)
	}

	orders := make(map[string]domain.Order, len(fields))
	for id, raw := range fields {
		order, err := decodeOrder([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode order %s: %w", id, err)
		}
		orders[id] = order
	}
	return orders, nil
}

// Clear удаляет хэш целиком.
func (s *OrderStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del orders: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis.
func (s *OrderStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeOrder(raw []byte) (domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

var (
	_ domain.Storage       = (*OrderStorage)(nil)
	_ domain.OrderInserter = (*OrderStorage)(nil)
	_ domain.Clearer       = (*OrderStorage)(nil)
	_ domain.Pinger        = (*OrderStorage)(nil)
)
