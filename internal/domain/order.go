package domain

import "strings"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending: заказ создан и ещё не отправлен.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusShipped: заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered: заказ получен клиентом.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled: заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses возвращает все допустимые статусы в порядке жизненного цикла.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid проверяет, что статус входит в закрытое перечисление.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus превращает внешнее значение в OrderStatus.
// Регистр и пробелы не нормализуются: "Shipped" не является статусом.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", &InvalidStatusError{Value: raw}
	}
	return status, nil
}

// Order: единственная сущность трекера.
// Все поля значимые, поэтому копирование по значению даёт независимую запись.
type Order struct {
	OrderID    string      `json:"order_id"`
	ItemName   string      `json:"item_name"`
	Quantity   int         `json:"quantity"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
}

// Clone возвращает независимую копию заказа.
// Хранилища вызывают его на каждой границе записи и чтения.
func (o Order) Clone() Order {
	return o
}

// WithStatus возвращает копию заказа с заменённым статусом; остальные поля не меняются.
func (o Order) WithStatus(status OrderStatus) Order {
	updated := o.Clone()
	updated.Status = status
	return updated
}

// NewOrder: входные данные для создания заказа.
// Пустой Status означает статус по умолчанию (pending).
type NewOrder struct {
	OrderID    string
	ItemName   string
	Quantity   int
	CustomerID string
	Status     string
}

// Validate проверяет входные данные и собирает заказ.
// Поля проверяются в порядке order_id, item_name, quantity, customer_id, status;
// возвращается первая найденная ошибка.
func (n NewOrder) Validate() (Order, error) {
	if isBlank(n.OrderID) {
		return Order{}, NewValidationError("order_id", "must be a non-empty string")
	}
	if isBlank(n.ItemName) {
		return Order{}, NewValidationError("item_name", "must be a non-empty string")
	}
	if n.Quantity < 1 {
		return Order{}, NewValidationError("quantity", "must be an integer greater than or equal to 1")
	}
	if isBlank(n.CustomerID) {
		return Order{}, NewValidationError("customer_id", "must be a non-empty string")
	}

	status := OrderStatusPending
	if n.Status != "" {
		parsed, err := ParseOrderStatus(n.Status)
		if err != nil {
			return Order{}, err
		}
		status = parsed
	}

	return Order{
		OrderID:    n.OrderID,
		ItemName:   n.ItemName,
		Quantity:   n.Quantity,
		CustomerID: n.CustomerID,
		Status:     status,
	}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
