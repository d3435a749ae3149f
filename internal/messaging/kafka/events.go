package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// Topics для Kafka
const (
	TopicOrderEvents        = "orders.order.events"
	TopicValidationRequests = "orders.catalog.validation.requests"
	TopicValidationReplies  = "orders.catalog.validation.replies"
)

// OrderEvent представляет событие жизненного цикла заказа
type OrderEvent struct {
	EventType      EventType `json:"event_type"`
	OrderID        string    `json:"order_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	AmountMinor    int64     `json:"amount_minor"`
	TotalItems     int32     `json:"total_items"`
	Timestamp      time.Time `json:"timestamp"`
}

// ValidationRequest — запрос на проверку набора продуктов каталогом.
// Ответ приходит в ReplyTopic с тем же CorrelationID.
type ValidationRequest struct {
	CorrelationID string    `json:"correlation_id"`
	ReplyTopic    string    `json:"reply_topic"`
	ProductIDs    []string  `json:"product_ids"`
	Timestamp     time.Time `json:"timestamp"`
}

// ValidationReply — ответ каталога: известные продукты из запрошенного набора.
type ValidationReply struct {
	CorrelationID string           `json:"correlation_id"`
	Products      []ProductPayload `json:"products"`
	Timestamp     time.Time        `json:"timestamp"`
}

// ProductPayload — продукт в том виде, в котором его отдаёт каталог.
type ProductPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
}

// NewOrderCreatedEvent создает событие о новом заказе
func NewOrderCreatedEvent(order domain.Order) *OrderEvent {
	return &OrderEvent{
		EventType:   EventTypeOrderCreated,
		OrderID:     order.ID,
		Status:      string(order.Status),
		AmountMinor: order.AmountMinor,
		TotalItems:  order.TotalItems,
		Timestamp:   time.Now().UTC(),
	}
}

// NewOrderStatusChangedEvent создает событие о смене статуса заказа
func NewOrderStatusChangedEvent(order domain.Order, previous domain.OrderStatus) *OrderEvent {
	return &OrderEvent{
		EventType:      EventTypeOrderStatusChanged,
		OrderID:        order.ID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		AmountMinor:    order.AmountMinor,
		TotalItems:     order.TotalItems,
		Timestamp:      time.Now().UTC(),
	}
}

// ToProducts конвертирует payload каталога в доменные продукты.
func (r *ValidationReply) ToProducts() []domain.Product {
	products := make([]domain.Product, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, domain.Product{
			ID:         p.ID,
			Name:       p.Name,
			PriceMinor: p.PriceMinor,
		})
	}
	return products
}
