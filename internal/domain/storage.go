package domain

import "context"

// Storage описывает хранилище заказов, которым пользуется OrderTracker.
// Бизнес-правил здесь нет: хранилище не валидирует данные.
// Каждая операция атомарна относительно конкурентных вызовов,
// а возвращаемые записи являются независимыми копиями.
// Ключ хранения не связан с Order.OrderID: запись возвращается ровно такой, какой сохранена.
type Storage interface {
	// SaveOrder сохраняет копию заказа под orderID, перезаписывая прежнее значение.
	SaveOrder(ctx context.Context, orderID string, order Order) error
	// GetOrder возвращает копию заказа; found=false, если ключа нет.
	GetOrder(ctx context.Context, orderID string) (order Order, found bool, err error)
	// GetAllOrders возвращает копии всех заказов по ключам хранения.
	GetAllOrders(ctx context.Context) (map[string]Order, error)
}

// OrderInserter: атомарная вставка "если ещё нет".
// inserted=false означает, что ключ уже занят и данные не изменились.
type OrderInserter interface {
	InsertOrder(ctx context.Context, orderID string, order Order) (inserted bool, err error)
}

// Clearer очищает хранилище. Используется только тестами и администрированием.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Pinger проверяет доступность хранилища для health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
