package domain

import "context"

// ProductValidator описывает взаимодействие с внешним каталогом товаров.
type ProductValidator interface {
	// Validate возвращает ровно то подмножество запрошенных идентификаторов,
	// которое существует и доступно для заказа. Пропуски выявляет вызывающая
	// сторона. Результат не кэшируется: каждый вызов — свежая проверка.
	Validate(ctx context.Context, productIDs []string) ([]Product, error)
}

// OrderEventPublisher публикует события жизненного цикла заказа.
// Публикация best-effort: ошибка логируется, но не роняет операцию.
type OrderEventPublisher interface {
	PublishOrderCreated(order Order) error
	PublishOrderStatusChanged(order Order, previous OrderStatus) error
}
