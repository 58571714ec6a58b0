package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

const opTimeout = 5 * time.Second

// OrderStorage: PostgreSQL-реализация domain.Storage поверх таблицы orders.
type OrderStorage struct {
	store *Store
}

// NewOrderStorage создаёт хранилище заказов на открытом Store.
// Схема должна быть применена заранее (MigrateUp).
func NewOrderStorage(store *Store) *OrderStorage {
	return &OrderStorage{store: store}
}

// SaveOrder выполняет upsert по ключу orderID; запись сохраняется без проверки полей.
func (s *OrderStorage) SaveOrder(ctx context.Context, orderID string, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.store.DB().ExecContext(ctx, `
		INSERT INTO orders (order_key, order_id, item_name, quantity, customer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_key) DO UPDATE
		SET order_id = EXCLUDED.order_id,
		    item_name = EXCLUDED.item_name,
		    quantity = EXCLUDED.quantity,
		    customer_id = EXCLUDED.customer_id,
		    status = EXCLUDED.status,
		    updated_at = NOW()
	`, orderID, order.OrderID, order.ItemName, order.Quantity, order.CustomerID, string(order.Status))
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", orderID, err)
	}
	return nil
}

// InsertOrder вставляет заказ, только если order_id свободен.
func (s *OrderStorage) InsertOrder(ctx context.Context, orderID string, order domain.Order) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.store.DB().ExecContext(ctx, `
		INSERT INTO orders (order_key, order_id, item_name, quantity, customer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_key) DO NOTHING
	`, orderID, order.OrderID, order.ItemName, order.Quantity, order.CustomerID, string(order.Status))
	if err != nil {
		return false, fmt.Errorf("insert order %s: %w", orderID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// GetOrder возвращает заказ или found=false.
func (s *OrderStorage) GetOrder(ctx context.Context, orderID string) (domain.Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, order, err := scanOrder(s.store.DB().QueryRowContext(ctx, `
		SELECT order_key, order_id, item_name, quantity, customer_id, status
		FROM orders
		WHERE order_key = $1
	`, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, fmt.Errorf("select order %s: %w", orderID, err)
	}
	return order, true, nil
}

// GetAllOrders возвращает все заказы.
func (s *OrderStorage) GetAllOrders(ctx context.Context) (map[string]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.store.DB().QueryContext(ctx, `
		SELECT order_key, order_id, item_name, quantity, customer_id, status
		FROM orders
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make(map[string]domain.Order)
	for rows.Next() {
		key, order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders[key] = order
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// Clear очищает таблицу заказов.
func (s *OrderStorage) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.store.DB().ExecContext(ctx, `TRUNCATE TABLE orders`); err != nil {
		return fmt.Errorf("truncate orders: %w", err)
	}
	return nil
}

// Ping проверяет подключение к базе.
func (s *OrderStorage) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOrder читает ключ строки и запись заказа как есть, без проверки значений.
func scanOrder(row rowScanner) (string, domain.Order, error) {
	var (
		key    string
		order  domain.Order
		status string
	)
	if err := row.Scan(&key, &order.OrderID, &order.ItemName, &order.Quantity, &order.CustomerID, &status); err != nil {
		return "", domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return key, order, nil
}

var (
	_ domain.Storage       = (*OrderStorage)(nil)
	_ domain.OrderInserter = (*OrderStorage)(nil)
	_ domain.Clearer       = (*OrderStorage)(nil)
	_ domain.Pinger        = (*OrderStorage)(nil)
)
