package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// TopicOrderEvents: topic по умолчанию для событий заказов.
const TopicOrderEvents = "ordertracker.order.events"

// OrderEventMessage: JSON-конверт события заказа в Kafka.
type OrderEventMessage struct {
	EventID        string       `json:"event_id"`
	EventType      string       `json:"event_type"`
	OrderID        string       `json:"order_id"`
	Order          domain.Order `json:"order"`
	PreviousStatus string       `json:"previous_status,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// NewOrderEventMessage строит конверт с новым event_id.
func NewOrderEventMessage(event domain.OrderEvent) OrderEventMessage {
	return OrderEventMessage{
		EventID:        uuid.NewString(),
		EventType:      string(event.Type),
		OrderID:        event.Order.OrderID,
		Order:          event.Order,
		PreviousStatus: string(event.PreviousStatus),
		OccurredAt:     time.Now().UTC(),
	}
}
