// Package storagetest содержит общий набор проверок контракта domain.Storage.
// Каждая реализация хранилища прогоняет его в своих тестах.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// Backend: хранилище со всеми возможностями, которые реализуют адаптеры репозитория.
type Backend interface {
	domain.Storage
	domain.OrderInserter
	domain.Clearer
	domain.Pinger
}

// SampleOrder возвращает валидный заказ для тестов.
func SampleOrder(id string) domain.Order {
	return domain.Order{
		OrderID:    id,
		ItemName:   "Widget",
		Quantity:   2,
		CustomerID: "C1",
		Status:     domain.OrderStatusPending,
	}
}

// Run прогоняет контракт на хранилище, которое возвращает newBackend.
// newBackend должен отдавать пустое хранилище.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Helper()

	t.Run("save and get", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		order := SampleOrder("A1")

		require.NoError(t, storage.SaveOrder(ctx, order.OrderID, order))

		got, found, err := storage.GetOrder(ctx, order.OrderID)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, order, got)
	})

	t.Run("get missing", func(t *testing.T) {
		storage := newBackend(t)

		got, found, err := storage.GetOrder(context.Background(), "missing")
		require.NoError(t, err)
		require.False(t, found)
		require.Equal(t, domain.Order{}, got)
	})

	t.Run("save overwrites", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		order := SampleOrder("A1")
		require.NoError(t, storage.SaveOrder(ctx, order.OrderID, order))

		order.Status = domain.OrderStatusShipped
		require.NoError(t, storage.SaveOrder(ctx, order.OrderID, order))

		got, found, err := storage.GetOrder(ctx, order.OrderID)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, domain.OrderStatusShipped, got.Status)
	})

	t.Run("save stores record as is", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		raw := domain.Order{OrderID: "X", Quantity: 0, Status: "lost"}

		require.NoError(t, storage.SaveOrder(ctx, "X", raw))

		got, found, err := storage.GetOrder(ctx, "X")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, raw, got)
	})

	t.Run("key is independent of record id", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		order := SampleOrder("OTHER")

		require.NoError(t, storage.SaveOrder(ctx, "K", order))

		got, found, err := storage.GetOrder(ctx, "K")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "OTHER", got.OrderID)

		_, found, err = storage.GetOrder(ctx, "OTHER")
		require.NoError(t, err)
		require.False(t, found)

		all, err := storage.GetAllOrders(ctx)
		require.NoError(t, err)
		require.Equal(t, map[string]domain.Order{"K": order}, all)

		inserted, err := storage.InsertOrder(ctx, "K2", order)
		require.NoError(t, err)
		require.True(t, inserted)
		got, _, err = storage.GetOrder(ctx, "K2")
		require.NoError(t, err)
		require.Equal(t, order, got)
	})

	t.Run("returned copies are independent", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		order := SampleOrder("A1")
		require.NoError(t, storage.SaveOrder(ctx, order.OrderID, order))

		// Мутация исходного значения после сохранения.
		order.ItemName = "mutated"

		got, _, err := storage.GetOrder(ctx, "A1")
		require.NoError(t, err)
		got.Quantity = 99

		all, err := storage.GetAllOrders(ctx)
		require.NoError(t, err)
		entry := all["A1"]
		entry.Status = domain.OrderStatusCancelled
		all["A1"] = entry
		delete(all, "A1")

		again, found, err := storage.GetOrder(ctx, "A1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, SampleOrder("A1"), again)
	})

	t.Run("get all", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()

		empty, err := storage.GetAllOrders(ctx)
		require.NoError(t, err)
		require.NotNil(t, empty)
		require.Empty(t, empty)

		first := SampleOrder("A1")
		second := SampleOrder("B2")
		second.Status = domain.OrderStatusDelivered
		second.Quantity = 7
		require.NoError(t, storage.SaveOrder(ctx, first.OrderID, first))
		require.NoError(t, storage.SaveOrder(ctx, second.OrderID, second))

		all, err := storage.GetAllOrders(ctx)
		require.NoError(t, err)
		require.Equal(t, map[string]domain.Order{"A1": first, "B2": second}, all)
	})

	t.Run("insert if absent", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		original := SampleOrder("A1")

		inserted, err := storage.InsertOrder(ctx, original.OrderID, original)
		require.NoError(t, err)
		require.True(t, inserted)

		other := original
		other.ItemName = "Gadget"
		inserted, err = storage.InsertOrder(ctx, other.OrderID, other)
		require.NoError(t, err)
		require.False(t, inserted)

		got, found, err := storage.GetOrder(ctx, original.OrderID)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, original, got)
	})

	t.Run("concurrent insert has one winner", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
			errs []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				order := SampleOrder("race")
				order.ItemName = fmt.Sprintf("item-%d", i)
				inserted, err := storage.InsertOrder(ctx, order.OrderID, order)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				if inserted {
					wins++
				}
			}(i)
		}
		wg.Wait()

		require.Empty(t, errs)
		require.Equal(t, 1, wins)
	})

	t.Run("clear", func(t *testing.T) {
		storage := newBackend(t)
		ctx := context.Background()
		require.NoError(t, storage.SaveOrder(ctx, "A1", SampleOrder("A1")))

		require.NoError(t, storage.Clear(ctx))

		all, err := storage.GetAllOrders(ctx)
		require.NoError(t, err)
		require.Empty(t, all)

		// Хранилище пригодно к работе после очистки.
		require.NoError(t, storage.SaveOrder(ctx, "B2", SampleOrder("B2")))
		_, found, err := storage.GetOrder(ctx, "B2")
		require.NoError(t, err)
		require.True(t, found)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newBackend(t).Ping(context.Background()))
	})
}
