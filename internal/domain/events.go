package domain

// OrderEventType определяет тип уведомления об изменении заказа.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent описывает факт изменения заказа для внешних подписчиков.
// PreviousStatus заполняется только для смены статуса.
type OrderEvent struct {
	Type           OrderEventType
	Order          Order
	PreviousStatus OrderStatus
}

// OrderEventPublisher передаёт события наружу (например, в Kafka).
type OrderEventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
}
