package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// OrderStorage: in-memory реализация domain.Storage.
// Данные живут только в памяти процесса и теряются при перезапуске.
type OrderStorage struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderStorage возвращает пустое in-memory хранилище для локальной разработки и тестов.
func NewOrderStorage() *OrderStorage {
	return &OrderStorage{
		orders: make(map[string]domain.Order),
	}
}

// SaveOrder сохраняет копию заказа, перезаписывая прежнее значение.
func (s *OrderStorage) SaveOrder(_ context.Context, orderID string, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[orderID] = order.Clone()
	return nil
}

// InsertOrder сохраняет заказ, только если ключ ещё не занят.
func (s *OrderStorage) InsertOrder(_ context.Context, orderID string, order domain.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[orderID]; exists {
		return false, nil
	}
	s.orders[orderID] = order.Clone()
	return true, nil
}

// GetOrder возвращает копию заказа или found=false.
func (s *OrderStorage) GetOrder(_ context.Context, orderID string) (domain.Order, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, false, nil
	}
	return order.Clone(), true, nil
}

// GetAllOrders возвращает копии всех заказов.
func (s *OrderStorage) GetAllOrders(_ context.Context) (map[string]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Order, len(s.orders))
	for id, order := range s.orders {
		result[id] = order.Clone()
	}
	return result, nil
}

// Clear удаляет все заказы.
func (s *OrderStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[string]domain.Order)
	return nil
}

// Ping всегда успешен: память доступна, пока жив процесс.
func (s *OrderStorage) Ping(context.Context) error {
	return nil
}

// Len возвращает количество заказов (используется в тестах).
func (s *OrderStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

var (
	_ domain.Storage       = (*OrderStorage)(nil)
	_ domain.OrderInserter = (*OrderStorage)(nil)
	_ domain.Clearer       = (*OrderStorage)(nil)
	_ domain.Pinger        = (*OrderStorage)(nil)
)
