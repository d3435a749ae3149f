package kafka

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// OrderEventPublisher публикует события жизненного цикла заказа в Kafka.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
	logger   *log.Entry
}

// NewOrderEventPublisher создает publisher поверх готового producer.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   log.WithField("component", "order-event-publisher"),
	}
}

// PublishOrderCreated публикует событие о созданном заказе.
// Ключ сообщения — id заказа, чтобы события одного заказа попадали
// в одну partition и сохраняли порядок.
func (p *OrderEventPublisher) PublishOrderCreated(order domain.Order) error {
	event := NewOrderCreatedEvent(order)
	if err := p.producer.PublishEvent(p.topic, order.ID, event); err != nil {
		return err
	}

	p.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"event":    event.EventType,
	}).Debug("order event published")
	return nil
}

// PublishOrderStatusChanged публикует событие о смене статуса заказа.
func (p *OrderEventPublisher) PublishOrderStatusChanged(order domain.Order, previous domain.OrderStatus) error {
	event := NewOrderStatusChangedEvent(order, previous)
	if err := p.producer.PublishEvent(p.topic, order.ID, event); err != nil {
		return err
	}

	p.logger.WithFields(log.Fields{
		"order_id":        order.ID,
		"event":           event.EventType,
		"status":          order.Status,
		"previous_status": previous,
	}).Debug("order event published")
	return nil
}

var _ domain.OrderEventPublisher = (*OrderEventPublisher)(nil)
