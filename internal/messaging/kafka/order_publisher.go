package kafka

import (
	"errors"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// OrderEventPublisher отправляет события заказов в один topic; ключ сообщения: order_id,
// поэтому события одного заказа попадают в одну партицию и сохраняют порядок.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт паблишер; пустой topic заменяется на TopicOrderEvents.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{producer: producer, topic: topic}
}

// Topic возвращает имя topic.
func (p *OrderEventPublisher) Topic() string {
	return p.topic
}

// PublishOrderEvent реализует domain.OrderEventPublisher.
func (p *OrderEventPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka order publisher is not initialized")
	}
	return p.producer.Publish(p.topic, event.Order.OrderID, NewOrderEventMessage(event))
}

var _ domain.OrderEventPublisher = (*OrderEventPublisher)(nil)
