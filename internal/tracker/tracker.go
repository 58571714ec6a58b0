// Package tracker реализует прикладные операции над заказами поверх domain.Storage.
package tracker

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
	"github.com/vladislavdragonenkov/ordertracker/internal/metrics"
)

// OrderTracker: единственная точка входа для операций над заказами.
// Записи сериализуются мьютексом экземпляра, чтения идут напрямую в хранилище.
type OrderTracker struct {
	storage   domain.Storage
	inserter  domain.OrderInserter
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
	publisher domain.OrderEventPublisher

	writeMu sync.Mutex
}

// Option настраивает необязательные зависимости трекера.
type Option func(*OrderTracker)

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(t *OrderTracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(t *OrderTracker) {
		t.metrics = m
	}
}

// WithPublisher подключает публикацию событий о заказах.
func WithPublisher(publisher domain.OrderEventPublisher) Option {
	return func(t *OrderTracker) {
		t.publisher = publisher
	}
}

// New создаёт трекер над хранилищем storage.
// Nil-хранилище (в том числе типизированный nil-указатель) даёт *domain.ConfigurationError.
func New(storage domain.Storage, opts ...Option) (*OrderTracker, error) {
	if isNil(storage) {
		return nil, &domain.ConfigurationError{Reason: "storage is required"}
	}

	t := &OrderTracker{
		storage: storage,
		logger:  log.New().WithField("component", "order-tracker"),
	}
	if inserter, ok := storage.(domain.OrderInserter); ok {
		t.inserter = inserter
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func isNil(storage domain.Storage) bool {
	if storage == nil {
		return true
	}
	v := reflect.ValueOf(storage)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// AddOrder валидирует вход и сохраняет новый заказ.
// Статус по умолчанию pending. Занятый order_id даёт *domain.DuplicateOrderError.
// Событие order.created публикуется до снятия замка записи.
func (t *OrderTracker) AddOrder(ctx context.Context, input domain.NewOrder) (domain.Order, error) {
	defer t.observe(metrics.OperationAddOrder, time.Now())

	order, err := input.Validate()
	if err != nil {
		t.reject(metrics.OperationAddOrder, err)
		return domain.Order{}, err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	created, err := t.insert(ctx, order)
	if err != nil {
		t.reject(metrics.OperationAddOrder, err)
		return domain.Order{}, err
	}

	t.metrics.RecordOrderCreated()
	t.logger.WithFields(log.Fields{
		"order_id": created.OrderID,
		"status":   created.Status,
	}).Info("order created")
	t.publish(domain.OrderEvent{Type: domain.OrderEventCreated, Order: created})

	return created, nil
}

func (t *OrderTracker) insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if t.inserter != nil {
		inserted, err := t.inserter.InsertOrder(ctx, order.OrderID, order.Clone())
		if err != nil {
			return domain.Order{}, err
		}
		if !inserted {
			return domain.Order{}, &domain.DuplicateOrderError{OrderID: order.OrderID}
		}
		return order, nil
	}

	_, exists, err := t.storage.GetOrder(ctx, order.OrderID)
	if err != nil {
		return domain.Order{}, err
	}
	if exists {
		return domain.Order{}, &domain.DuplicateOrderError{OrderID: order.OrderID}
	}
	if err := t.storage.SaveOrder(ctx, order.OrderID, order.Clone()); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// GetOrderByID возвращает заказ или found=false; отсутствие заказа не ошибка.
func (t *OrderTracker) GetOrderByID(ctx context.Context, orderID string) (domain.Order, bool, error) {
	defer t.observe(metrics.OperationGetOrder, time.Now())

	order, found, err := t.storage.GetOrder(ctx, orderID)
	if err != nil {
		t.reject(metrics.OperationGetOrder, err)
		return domain.Order{}, false, err
	}
	t.metrics.RecordLookup(found)
	if !found {
		return domain.Order{}, false, nil
	}
	return order.Clone(), true, nil
}

// UpdateOrderStatus меняет только статус заказа.
// Сначала проверяется существование заказа, затем значение статуса.
// Разрешён любой переход между статусами, включая переход в тот же статус.
func (t *OrderTracker) UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (domain.Order, error) {
	defer t.observe(metrics.OperationUpdateOrderStatus, time.Now())

	// Событие публикуется под тем же замком, что и запись: порядок событий
	// по заказу совпадает с порядком изменений.
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	updated, previous, err := t.updateStatus(ctx, orderID, newStatus)
	if err != nil {
		t.reject(metrics.OperationUpdateOrderStatus, err)
		return domain.Order{}, err
	}

	t.metrics.RecordStatusUpdate(string(updated.Status))
	t.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       updated.Status,
	}).Info("order status updated")
	t.publish(domain.OrderEvent{
		Type:           domain.OrderEventStatusChanged,
		Order:          updated,
		PreviousStatus: previous,
	})

	return updated, nil
}

func (t *OrderTracker) updateStatus(ctx context.Context, orderID, newStatus string) (domain.Order, domain.OrderStatus, error) {
	current, found, err := t.storage.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, "", err
	}
	if !found {
		return domain.Order{}, "", &domain.NotFoundError{OrderID: orderID}
	}

	status, err := domain.ParseOrderStatus(newStatus)
	if err != nil {
		return domain.Order{}, "", err
	}

	updated := current.WithStatus(status)
	if err := t.storage.SaveOrder(ctx, orderID, updated.Clone()); err != nil {
		return domain.Order{}, "", err
	}
	return updated, current.Status, nil
}

// ListAllOrders возвращает все заказы, отсортированные по order_id.
// Пустое хранилище даёт пустой (не nil) срез.
func (t *OrderTracker) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	defer t.observe(metrics.OperationListOrders, time.Now())

	orders, err := t.list(ctx, "")
	if err != nil {
		t.reject(metrics.OperationListOrders, err)
		return nil, err
	}
	return orders, nil
}

// ListOrdersByStatus возвращает заказы с указанным статусом, отсортированные по order_id.
func (t *OrderTracker) ListOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	defer t.observe(metrics.OperationListOrdersByStatus, time.Now())

	parsed, err := domain.ParseOrderStatus(status)
	if err != nil {
		t.reject(metrics.OperationListOrdersByStatus, err)
		return nil, err
	}

	orders, err := t.list(ctx, parsed)
	if err != nil {
		t.reject(metrics.OperationListOrdersByStatus, err)
		return nil, err
	}
	return orders, nil
}

// ListOrders служит общим входом для транспортов; пустой status означает все заказы.
func (t *OrderTracker) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	if status == "" {
		return t.ListAllOrders(ctx)
	}
	return t.ListOrdersByStatus(ctx, status)
}

func (t *OrderTracker) list(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	all, err := t.storage.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(all))
	for _, order := range all {
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })
	return orders, nil
}

// Ping проверяет хранилище, если оно это умеет.
func (t *OrderTracker) Ping(ctx context.Context) error {
	if pinger, ok := t.storage.(domain.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (t *OrderTracker) publish(event domain.OrderEvent) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishOrderEvent(event); err != nil {
		t.metrics.RecordEventPublishFailed()
		t.logger.WithError(err).WithFields(log.Fields{
			"order_id": event.Order.OrderID,
			"event":    event.Type,
		}).Warn("failed to publish order event")
	}
}

func (t *OrderTracker) observe(operation string, started time.Time) {
	t.metrics.ObserveOperation(operation, time.Since(started))
}

func (t *OrderTracker) reject(operation string, err error) {
	reason := rejectReason(err)
	t.metrics.RecordRejected(operation, reason)
	entry := t.logger.WithError(err).WithField("operation", operation)
	if reason == "storage" {
		entry.Error("storage operation failed")
		return
	}
	entry.WithField("reason", reason).Debug("operation rejected")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrDuplicateOrderID):
		return "duplicate"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "not_found"
	default:
		return "storage"
	}
}
