// Package sqlite хранит заказы в локальном файле SQLite (pure-Go драйвер, без CGO).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    order_key   TEXT    PRIMARY KEY,
    order_id    TEXT    NOT NULL,
    item_name   TEXT    NOT NULL,
    quantity    INTEGER NOT NULL,
    customer_id TEXT    NOT NULL,
    status      TEXT    NOT NULL,
    updated_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

var errStorageClosed = errors.New("sqlite storage is not initialized")

// OrderStorage: реализация domain.Storage поверх SQLite.
type OrderStorage struct {
	db *sql.DB
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
func Open(path string) (*OrderStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	// busy_timeout заставляет ждать блокировку вместо мгновенной ошибки SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", filepath.Clean(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &OrderStorage{db: db}, nil
}

// Close закрывает соединение с базой.
func (s *OrderStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveOrder перезаписывает запись под ключом orderID; поля не проверяются.
func (s *OrderStorage) SaveOrder(ctx context.Context, orderID string, order domain.Order) error {
	if s == nil || s.db == nil {
		return errStorageClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders (order_key, order_id, item_name, quantity, customer_id, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, order.OrderID, order.ItemName, order.Quantity, order.CustomerID, string(order.Status))
	if err != nil {
		return fmt.Errorf("save order %s: %w", orderID, err)
	}
	return nil
}

// InsertOrder вставляет заказ, только если ключ orderID ещё не занят.
func (s *OrderStorage) InsertOrder(ctx context.Context, orderID string, order domain.Order) (bool, error) {
	if s == nil || s.db == nil {
		return false, errStorageClosed
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO orders (order_key, order_id, item_name, quantity, customer_id, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, order.OrderID, order.ItemName, order.Quantity, order.CustomerID, string(order.Status))
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
	if s == nil || s.db == nil {
		return domain.Order{}, false, errStorageClosed
	}

	_, order, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT order_key, order_id, item_name, quantity, customer_id, status
		FROM orders WHERE order_key = ?`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, true, nil
}

// GetAllOrders возвращает все заказы.
func (s *OrderStorage) GetAllOrders(ctx context.Context) (map[string]domain.Order, error) {
	if s == nil || s.db == nil {
		return nil, errStorageClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT order_key, order_id, item_name, quantity, customer_id, status FROM orders`)
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

// Clear удаляет все заказы.
func (s *OrderStorage) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStorageClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	return nil
}

// Ping проверяет, что файл базы доступен.
func (s *OrderStorage) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStorageClosed
	}
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

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
